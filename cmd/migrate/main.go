package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/orgchart/internal/platform/config"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
	"github.com/ogurasousui/orgchart/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

// migrator は *migrate.Migrate のうち本コマンドが使う操作です。
type migrator interface {
	Up() error
	Down() error
	Drop() error
	Steps(n int) error
	Version() (uint, bool, error)
}

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
	)
	flag.Parse()

	if _, err := config.LoadEnv(".env", ".env.local"); err != nil {
		log.Fatalf("failed to load env files: %v", err)
	}

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid database config")
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"up"}
	}

	m, err := openMigrator(*migrationsDir, cfg.Database.DSN())
	if err != nil {
		logger.WithError(err).Fatal("failed to open migrations")
	}
	defer m.Close()

	entry := logger.WithField("action", args[0])
	state, err := runMigration(m, args)
	if err != nil {
		entry.WithError(err).Fatal("migration failed")
	}
	entry.WithFields(logrus.Fields{
		"version": state.Version,
		"dirty":   state.Dirty,
		"latest":  pgdb.SchemaVersion,
		"current": state.Current(),
	}).Info("migration completed")
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func openMigrator(dir, dsn string) (*migrate.Migrate, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// runMigration は args[0] の操作を実行し、実行後の適用状態を返します。
// 未適用の状態は Version 0 として扱います。
func runMigration(m migrator, args []string) (pgdb.SchemaState, error) {
	var err error
	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "drop":
		err = m.Drop()
	case "steps":
		if len(args) < 2 {
			return pgdb.SchemaState{}, errors.New("steps requires a count")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n == 0 {
			return pgdb.SchemaState{}, fmt.Errorf("invalid step count %q", args[1])
		}
		err = m.Steps(n)
	case "version":
	default:
		return pgdb.SchemaState{}, fmt.Errorf("unsupported action %q", args[0])
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pgdb.SchemaState{}, err
	}
	return schemaState(m)
}

func schemaState(m migrator) (pgdb.SchemaState, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return pgdb.SchemaState{}, nil
	}
	if err != nil {
		return pgdb.SchemaState{}, fmt.Errorf("read version: %w", err)
	}
	return pgdb.SchemaState{Version: version, Dirty: dirty}, nil
}
