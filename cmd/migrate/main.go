package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	identityapp "github.com/erp/backoffice/internal/application/identity"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/bootstrap"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/migrations"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
		adminEmail     string
		adminPassword  string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&adminEmail, "admin-email", "admin@erp.local", "E-mail of the seeded administrator")
	flag.StringVar(&adminPassword, "admin-password", os.Getenv("ERP_SEED_ADMIN_PASSWORD"), "Password of the seeded administrator")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// create and list only touch files
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		dir := migrationsPath
		if dir == "" {
			dir = "migrations"
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		var fsys fs.FS = migrations.FS
		if migrationsPath != "" {
			fsys = os.DirFS(migrationsPath)
		}
		names, err := migration.ListMigrations(fsys)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if command == "seed" {
		if err := seed(context.Background(), cfg, log, adminEmail, adminPassword); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
		return
	}

	if cfg.Database.Driver != "postgres" {
		log.Fatal("Versioned migrations need postgres; sqlite schemas are created on server start",
			zap.String("driver", cfg.Database.Driver))
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if migrationsPath != "" {
		m, err = migration.NewFromDir(db, migrationsPath, log)
	} else {
		m, err = migration.New(db, migrations.FS, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		n, convErr := intArg(args, "step <n>")
		if convErr != nil {
			log.Fatal("Invalid step count", zap.Error(convErr))
		}
		err = m.Steps(n)
	case "force":
		v, convErr := intArg(args, "force <version>")
		if convErr != nil {
			log.Fatal("Invalid version", zap.Error(convErr))
		}
		log.Warn("Forcing migration version")
		err = m.Force(v)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to read version", zap.Error(verr))
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", usage)
	}
	return strconv.Atoi(args[1])
}

// seed creates the default warehouse, the standard VAT rate and an
// administrator. Running it twice changes nothing.
func seed(ctx context.Context, cfg *config.Config, log *zap.Logger, adminEmail, adminPassword string) error {
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{Logger: log, LogLevel: "warn"})
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return err
		}
	}

	c, err := bootstrap.NewContainer(db.DB, cfg, bootstrap.Infra{}, log)
	if err != nil {
		return err
	}

	code := cfg.Ledger.DefaultWarehouseCode
	if _, err := c.Repos.Warehouses.FindByCode(ctx, code); errors.Is(err, shared.ErrNotFound) {
		wh, err := c.Warehouses.Create(ctx, partnerapp.CreateWarehouseRequest{Code: code, Name: "Hauptlager", IsDefault: true})
		if err != nil {
			return fmt.Errorf("default warehouse: %w", err)
		}
		log.Info("Default warehouse created", zap.String("id", wh.ID.String()), zap.String("code", code))
	} else if err != nil {
		return err
	}

	if _, err := c.Repos.TaxRates.FindDefault(ctx, time.Now()); errors.Is(err, shared.ErrNotFound) {
		rate, err := c.TaxRates.Create(ctx, tradeapp.CreateTaxRateRequest{
			Name:      "MwSt 19%",
			Rate:      decimal.NewFromInt(19),
			IsDefault: true,
		})
		if err != nil {
			return fmt.Errorf("default tax rate: %w", err)
		}
		log.Info("Default tax rate created", zap.String("id", rate.ID.String()), zap.String("rate", rate.Rate.String()))
	} else if err != nil {
		return err
	}

	if adminPassword == "" {
		log.Warn("No admin password given, skipping the administrator")
		return nil
	}
	user, created, err := c.Users.EnsureUser(ctx, identityapp.CreateUserRequest{
		Email:    adminEmail,
		Name:     "Administrator",
		Password: adminPassword,
		Roles:    []string{string(identity.RoleSuperAdmin)},
	})
	if err != nil {
		return fmt.Errorf("administrator: %w", err)
	}
	log.Info("Administrator ready", zap.String("email", user.Email), zap.Bool("created", created))
	return nil
}

func printUsage() {
	fmt.Println(`ERP database tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations
  seed                  Create the default warehouse, tax rate and an administrator

Flags:
  -path string            Migrations directory (default: embedded set)
  -log-level string       debug, info, warn, error (default: info)
  -admin-email string     Seeded administrator (default: admin@erp.local)
  -admin-password string  Password, or ERP_SEED_ADMIN_PASSWORD

Environment Variables:
  ERP_DATABASE_DRIVER, ERP_DATABASE_HOST, ERP_DATABASE_PORT, ERP_DATABASE_USER,
  ERP_DATABASE_PASSWORD, ERP_DATABASE_DBNAME, ERP_DATABASE_SSLMODE`)
}
