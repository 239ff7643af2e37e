package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/erp/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"add users table":    "add_users_table",
		"Add-Users-Table":    "add_users_table",
		"add__users__table":  "add_users_table",
		"Lagerort Spalte 2":  "lagerort_spalte_2",
		"   spaces   ":       "spaces",
		"special!@#$chars":   "special_chars",
		"_leading_trailing_": "leading_trailing",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add ledger notes", "Free text on ledger entries")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_ledger_notes.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "000001_add_ledger_notes (up)")
	assert.Contains(t, string(up), "Free text on ledger entries")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(down)")

	second, err := CreateMigration(dir, "index orders", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
}

func TestCreateMigration_Errors(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_late.up.sql":      {},
		"000010_late.down.sql":    {},
		"000002_second.up.sql":    {},
		"000001_init.up.sql":      {},
		"000001_init.down.sql":    {},
		"README.md":               {},
		"subdir.up.sql/x.sql":     {},
		"not_numbered.up.sql":     {},
		"000003_no_direction.sql": {},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_second", "000010_late"}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_outbox_events", "000003_shipping_methods_tax_rates"}, names)

	for _, n := range names {
		_, err := migrations.FS.Open(n + ".down.sql")
		assert.NoError(t, err, "%s needs a down migration", n)
	}
}
