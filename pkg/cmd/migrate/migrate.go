package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/cmd/util"
	"github.com/mpapenbr/racepace/pkg/config"
	dbmigrate "github.com/mpapenbr/racepace/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (embedded migrations if empty)")

	return cmd
}

func startMigration(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := util.SetupLogger(); err != nil {
		return err
	}
	if err := util.WaitForRequiredServices(ctx, true); err != nil {
		return err
	}

	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		if err := dbmigrate.MigrateDB(config.DB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("Migration done")
		return nil
	}

	log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
	dbURL := prepareURLForDB(config.DB)

	m, err := migrate.New(config.MigrationSourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("could not create migration: %w", err)
	}
	defer m.Close()
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No Migration required")
		return nil
	}
	return err
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, options) {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
