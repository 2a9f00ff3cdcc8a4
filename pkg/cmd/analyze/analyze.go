package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racepace/pkg/cmd/util"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/format"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/service/analysis"
	"github.com/mpapenbr/racepace/pkg/source"
)

var (
	sessionKey int
	drivers    string
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyzes a session and prints the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzeSession(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&sessionKey, "session-key", 0, "session to analyze")
	cmd.Flags().StringVar(&drivers, "drivers", "",
		"comma separated driver numbers (all drivers if empty)")
	cmd.Flags().IntVar(&config.MinimumLaps,
		"minimum-laps",
		3,
		"valid laps a stint needs for a degradation result")
	return cmd
}

func analyzeSession(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if sessionKey <= 0 {
		return errors.New("--session-key is required")
	}
	selected, err := util.ParseDrivers(drivers)
	if err != nil {
		return err
	}
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	var pool *pgxpool.Pool
	if err := util.WaitForRequiredServices(ctx, config.Source == util.SourceDB); err != nil {
		return err
	}
	if config.Source == util.SourceDB {
		if pool, err = util.NewPool(ctx, logger); err != nil {
			return err
		}
		defer pool.Close()
	}
	src, err := util.NewDataSource(pool, logger)
	if err != nil {
		return err
	}
	if err := util.VerifyBackend(ctx, src); err != nil {
		return err
	}
	// the cache lets the analyzer reuse the bundle loaded for the driver names
	loader := source.NewCachedLoader(src, time.Minute, logger)
	a := analysis.New(loader,
		analysis.WithLogger(logger),
		analysis.WithMinimumLaps(config.MinimumLaps))
	defer a.Close()

	data, err := a.SessionData(ctx, sessionKey)
	if err != nil {
		return err
	}
	res, err := a.Analyze(ctx, sessionKey, selected)
	if err != nil {
		return err
	}
	render(w, data, res)
	return nil
}

func render(w io.Writer, data *model.SessionData, res *model.SessionAnalysis) {
	names := driverNames(data)
	fmt.Fprintf(w, "%s %s (%d)\n",
		data.Session.CircuitShortName, data.Session.SessionName, data.Session.SessionKey)

	t := newTable(w)
	t.SetTitle("Gaps")
	t.AppendHeader(table.Row{"Driver", "Lap", "Total", "Gap"})
	if len(res.Gaps) > 0 {
		last := res.Gaps[len(res.Gaps)-1]
		for _, g := range last.Drivers {
			t.AppendRow(table.Row{
				names(g.DriverNumber),
				last.LapNumber,
				format.LapTime(g.CumulativeTime),
				format.Delta(g.GapToLeader),
			})
		}
	}
	t.Render()

	t = newTable(w)
	t.SetTitle("Degradation")
	t.AppendHeader(table.Row{"Driver", "Stint", "Tyre", "Deg/Lap", "Total", "Avg", "R²", "Gap/Lap"})
	for i := range res.Degradation {
		d := &res.Degradation[i]
		avg := d.AverageLapTime
		t.AppendRow(table.Row{
			names(d.DriverNumber),
			d.StintNumber,
			format.TyreAbbreviation(d.Compound),
			format.DegradationPerLap(d.DegradationPerLap),
			format.Delta(model.FiniteOrNil(d.TotalDegradation)),
			format.LapTime(&avg),
			format.RSquared(d.RSquared),
			format.Delta(d.GapPerLap),
		})
	}
	t.Render()

	t = newTable(w)
	t.SetTitle("Sectors")
	t.AppendHeader(table.Row{"Pos", "Driver", "Lap", "S1", "S2", "S3", "Time", "Delta"})
	for i := range res.Sectors.Drivers {
		s := &res.Sectors.Drivers[i]
		t.AppendRow(table.Row{
			format.Position(s.Position),
			names(s.DriverNumber),
			s.Lap.LapNumber,
			format.SectorTime(s.Lap.Sector(1)),
			format.SectorTime(s.Lap.Sector(2)),
			format.SectorTime(s.Lap.Sector(3)),
			format.LapTime(s.Lap.LapDuration),
			format.Delta(s.Delta),
		})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func driverNames(data *model.SessionData) func(int) string {
	lookup := make(map[int]string, len(data.Drivers))
	for i := range data.Drivers {
		if a := data.Drivers[i].NameAcronym; a != "" {
			lookup[data.Drivers[i].DriverNumber] = a
		}
	}
	return func(num int) string {
		if name, ok := lookup[num]; ok {
			return fmt.Sprintf("%s (%d)", name, num)
		}
		return strconv.Itoa(num)
	}
}

