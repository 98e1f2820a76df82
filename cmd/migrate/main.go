package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	"github.com/ogurasousui/employee-directory/internal/platform/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// migrator は employees スキーマの移行を、設定ファイルで選んだ postgres に対して行います。
type migrator struct {
	configPath string
	dir        string
	log        logrus.FieldLogger
}

func newRootCmd() *cobra.Command {
	mg := &migrator{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the employees schema migrations (postgres store only)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&mg.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	root.PersistentFlags().StringVar(&mg.dir, "dir", "assets/migrations", "directory containing migration files")

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is given)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if steps < 0 {
				return fmt.Errorf("--steps must not be negative, got %d", steps)
			}
			return mg.run("down", func(m *migrate.Migrate) error {
				if steps > 0 {
					return ignoreNoChange(m.Steps(-steps))
				}
				return ignoreNoChange(m.Down())
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return mg.run("up", func(m *migrate.Migrate) error {
					return ignoreNoChange(m.Up())
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "drop",
			Short: "Drop everything in the database",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return mg.run("drop", (*migrate.Migrate).Drop)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return mg.run("version", mg.printVersion)
			},
		},
	)
	return root
}

// run は設定を読み込み、migrate インスタンスを開いて action を実行します。
func (mg *migrator) run(name string, action func(*migrate.Migrate) error) error {
	if _, err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(config.EffectivePath(mg.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := requirePostgres(cfg); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()
	mg.log = logger.WithFields(logrus.Fields{"action": name, "dir": mg.dir})

	source, err := sourceURL(mg.dir)
	if err != nil {
		return err
	}
	m, err := migrate.New(source, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := action(m); err != nil {
		return fmt.Errorf("migration %s: %w", name, err)
	}
	mg.log.Info("migration completed")
	return nil
}

func (mg *migrator) printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		mg.log.Info("no migration applied")
		return nil
	}
	if err != nil {
		return err
	}
	mg.log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("current schema version")
	return nil
}

// requirePostgres は移行対象が postgres ストアであることを確認します。mongodb と sqlite は起動時にスキーマを用意します。
func requirePostgres(cfg *config.Config) error {
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations apply to the postgres store only (store.driver=%s)", cfg.Store.Driver)
	}
	return nil
}

func sourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
