package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/cmd/util"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/source"
	"github.com/mpapenbr/racepace/pkg/source/pgsource"
)

var sessionKeys []int

func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "imports sessions from a remote source into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return importSessions(cmd.Context())
		},
	}
	cmd.Flags().IntSliceVar(&sessionKeys,
		"session-key",
		[]int{},
		"sessions to import (may be repeated)")
	return cmd
}

func importSessions(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(sessionKeys) == 0 {
		return errors.New("at least one --session-key is required")
	}
	if config.Source == util.SourceDB {
		return fmt.Errorf("cannot import from source %q", util.SourceDB)
	}
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	if err := util.WaitForRequiredServices(ctx, true); err != nil {
		return err
	}
	pool, err := util.NewPool(ctx, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	remote, err := util.NewRemoteSource(logger)
	if err != nil {
		return err
	}
	if err := util.VerifyBackend(ctx, remote); err != nil {
		return err
	}
	store := pgsource.New(pool, logger)
	for _, key := range sessionKeys {
		data, err := source.LoadBundle(ctx, remote, key)
		if err != nil {
			return fmt.Errorf("session %d: %w", key, err)
		}
		if err := store.Store(ctx, data); err != nil {
			return fmt.Errorf("session %d: %w", key, err)
		}
		log.Info("Session imported",
			log.Int("sessionKey", key),
			log.Int("drivers", len(data.Drivers)),
			log.Int("laps", len(data.Laps)),
			log.Int("stints", len(data.Stints)),
			log.Int("pitStops", len(data.PitStops)))
	}
	return nil
}
