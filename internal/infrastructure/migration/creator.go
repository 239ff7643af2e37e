package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Version}}_{{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

var versionPattern = regexp.MustCompile(`^(\d+)_.+\.up\.sql$`)

// MigrationFile is a freshly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair numbered one past the highest
// version already present in dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	name = sanitizeName(name)
	if name == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	next, err := nextVersion(os.DirFS(dir))
	if err != nil {
		return nil, err
	}

	mf := &MigrationFile{
		Version:     fmt.Sprintf("%06d", next),
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	base := mf.Version + "_" + name
	mf.UpPath = filepath.Join(dir, base+".up.sql")
	mf.DownPath = filepath.Join(dir, base+".down.sql")

	if err := writeFile(mf.UpPath, mf, "up"); err != nil {
		return nil, err
	}
	if err := writeFile(mf.DownPath, mf, "down"); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeFile(path string, mf *MigrationFile, direction string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return fileTemplate.Execute(f, struct {
		*MigrationFile
		Direction string
	}{mf, direction})
}

func nextVersion(fsys fs.FS) (int, error) {
	names, err := ListMigrations(fsys)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, n := range names {
		v, _ := strconv.Atoi(n[:strings.IndexByte(n, '_')])
		if v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lowercases name and collapses everything but letters and
// digits into single underscores
func sanitizeName(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// ListMigrations returns the base names of all up migrations in version order
func ListMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	type found struct {
		version int
		name    string
	}
	var list []found
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := versionPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, _ := strconv.Atoi(m[1])
		list = append(list, found{version: v, name: strings.TrimSuffix(e.Name(), ".up.sql")})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })

	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.name
	}
	return out, nil
}
