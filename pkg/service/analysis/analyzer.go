// Package analysis runs the analytics engines for a session.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/analysis/chartdata"
	"github.com/mpapenbr/racepace/pkg/analysis/degradation"
	"github.com/mpapenbr/racepace/pkg/analysis/gap"
	"github.com/mpapenbr/racepace/pkg/analysis/sectors"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/utils/broadcast"
)

type (
	// Loader provides the data of a session.
	Loader interface {
		Load(ctx context.Context, sessionKey int) (*model.SessionData, error)
	}
	// Invalidator is implemented by loaders that cache.
	Invalidator interface {
		Invalidate(ctx context.Context, sessionKey int)
	}
	Publisher interface {
		Publish(ctx context.Context, a *model.SessionAnalysis) error
	}
	SnapshotStore interface {
		SaveAnalysis(ctx context.Context, a *model.SessionAnalysis) error
	}
)

type Option func(*Analyzer)

func WithPublisher(p Publisher) Option {
	return func(a *Analyzer) {
		a.publisher = p
	}
}

func WithSnapshotStore(s SnapshotStore) Option {
	return func(a *Analyzer) {
		a.store = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.l = l
	}
}

// WithMinimumLaps sets the number of valid laps a stint needs for degradation.
func WithMinimumLaps(n int) Option {
	return func(a *Analyzer) {
		a.minimumLaps = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

type Analyzer struct {
	loader      Loader
	publisher   Publisher
	store       SnapshotStore
	minimumLaps int
	now         func() time.Time
	l           *log.Logger
	tracer      trace.Tracer
	counter     metric.Int64Counter

	mu     sync.RWMutex
	closed bool
	events chan *model.SessionAnalysis
	bcst   broadcast.Server[*model.SessionAnalysis]
}

func New(loader Loader, opts ...Option) *Analyzer {
	ret := &Analyzer{
		loader:      loader,
		minimumLaps: degradation.DefaultMinimumLaps,
		now:         time.Now,
		l:           log.Default(),
		tracer:      otel.Tracer("racepace/service/analysis"),
		events:      make(chan *model.SessionAnalysis),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.l = ret.l.Named("analysis")
	ret.bcst = broadcast.New("analysis", ret.events,
		broadcast.WithLogger[*model.SessionAnalysis](ret.l))

	var err error
	ret.counter, err = otel.Meter("racepace/service/analysis").Int64Counter(
		"racepace.analysis.count",
		metric.WithDescription("Number of computed analyses"),
		metric.WithUnit("{analysis}"))
	if err != nil {
		ret.l.Error("failed to register metric", log.ErrorField(err))
	}
	return ret
}

// SessionData returns the raw data of a session.
func (a *Analyzer) SessionData(ctx context.Context, sessionKey int) (*model.SessionData, error) {
	return a.loader.Load(ctx, sessionKey)
}

// Analyze computes all derived data for the selected drivers.
// An empty selection means all drivers of the session in driver list order.
//
//nolint:whitespace,funlen // readability
func (a *Analyzer) Analyze(
	ctx context.Context,
	sessionKey int,
	drivers []int,
) (ret *model.SessionAnalysis, err error) {
	ctx, span := a.tracer.Start(ctx, "analyze",
		trace.WithAttributes(attribute.Int("session_key", sessionKey)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	data, err := a.loader.Load(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err = model.ValidateDrivers(drivers); err != nil {
		return nil, err
	}
	selected := lo.Uniq(drivers)
	if len(selected) == 0 {
		selected = data.DriverNumbers()
	}
	stints := lo.Filter(data.Stints, func(s model.StintRecord, _ int) bool {
		return lo.Contains(selected, s.DriverNumber)
	})

	ret = &model.SessionAnalysis{
		SessionKey: sessionKey,
		Drivers:    selected,
	}
	var errs []error
	var errMu sync.Mutex
	collect := func(name string, e error) {
		if e != nil {
			errMu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", name, e))
			errMu.Unlock()
		}
	}
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		var e error
		ret.LapTimes, e = chartdata.ShapeLapTimeRows(data.Laps, selected)
		collect("lap times", e)
	})
	wg.Go(func() {
		var e error
		ret.Gaps, e = gap.ComputeGapSeries(data.Laps, selected)
		collect("gaps", e)
	})
	wg.Go(func() {
		var e error
		ret.Degradation, e = degradation.Compute(data.Laps, stints,
			degradation.WithMinimumLaps(a.minimumLaps))
		collect("degradation", e)
	})
	wg.Go(func() {
		var e error
		ret.Sectors, e = sectors.ComputeSectorPerformance(data.Laps, selected, 0)
		collect("sectors", e)
	})
	wg.Wait()
	if err = errors.Join(errs...); err != nil {
		return nil, err
	}
	ret.ComputedAt = a.now().UTC()

	if a.counter != nil {
		a.counter.Add(ctx, 1)
	}
	a.l.Debug("Analysis computed",
		log.Int("sessionKey", sessionKey),
		log.Ints("drivers", selected),
		log.Int("laps", len(data.Laps)),
		log.Int("stints", len(ret.Degradation)))
	a.emit(ctx, ret)
	return ret, nil
}

// Refresh drops cached data of the session and recomputes for all drivers.
func (a *Analyzer) Refresh(ctx context.Context, sessionKey int) (*model.SessionAnalysis, error) {
	if inv, ok := a.loader.(Invalidator); ok {
		inv.Invalidate(ctx, sessionKey)
	}
	return a.Analyze(ctx, sessionKey, nil)
}

// Subscribe returns a channel receiving every computed analysis.
func (a *Analyzer) Subscribe() <-chan *model.SessionAnalysis {
	return a.bcst.Subscribe()
}

func (a *Analyzer) Unsubscribe(ch <-chan *model.SessionAnalysis) {
	a.bcst.CancelSubscription(ch)
}

// Close stops the distribution of analyses, subscriber channels get closed.
func (a *Analyzer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	close(a.events)
}

func (a *Analyzer) emit(ctx context.Context, res *model.SessionAnalysis) {
	if a.store != nil {
		if err := a.store.SaveAnalysis(ctx, res); err != nil {
			a.l.Warn("could not store analysis",
				log.Int("sessionKey", res.SessionKey), log.ErrorField(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, res); err != nil {
			a.l.Warn("could not publish analysis",
				log.Int("sessionKey", res.SessionKey), log.ErrorField(err))
		}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.events <- res:
	case <-ctx.Done():
	}
}
