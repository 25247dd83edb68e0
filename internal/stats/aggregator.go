package stats

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"habitsync/internal/model"
)

// Gateway is the statistics slice of the habit API.
type Gateway interface {
	OverallStats(ctx context.Context) (*model.OverallStats, error)
	HabitCompletionRates(ctx context.Context, days int) ([]model.HabitCompletionRate, error)
	DailyCompletions(ctx context.Context, days int) ([]model.DailyCompletion, error)
	HabitStats(ctx context.Context, habitID string) (*model.HabitStats, error)
	HabitProgress(ctx context.Context, habitID string, days int) ([]model.ProgressPoint, error)
}

// Snapshot is the current batch statistics view. Loading covers the whole
// batch: it flips before the first sub-fetch starts and only back after every
// sub-fetch has settled, so Loading==false never exposes a half-updated batch.
type Snapshot struct {
	Overall          *model.OverallStats
	CompletionRates  []model.HabitCompletionRate
	DailyCompletions []model.DailyCompletion
	Loading          bool
	Err              error
}

// Aggregator owns the batch statistics state and deduplicates concurrent
// identical requests. The batch group (overview, completion rates, daily
// completions) shares one loading flag and one error; per-habit queries are
// outside the group with their own scope.
type Aggregator struct {
	mu      sync.Mutex
	overall *model.OverallStats
	rates   []model.HabitCompletionRate
	daily   []model.DailyCompletion
	loading bool
	err     error

	gateway Gateway
	group   singleflight.Group
	logger  *zap.Logger
}

func NewAggregator(gw Gateway, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		gateway: gw,
		logger:  logger,
	}
}

// FetchAll runs the three batch sub-fetches concurrently and joins them.
// Concurrent calls with the same window share one in-flight batch. A failed
// sub-fetch sets the shared error but does not cancel its siblings; whatever
// succeeded is stored.
func (a *Aggregator) FetchAll(ctx context.Context, days int) error {
	_, err, _ := a.group.Do("batch:"+strconv.Itoa(days), func() (any, error) {
		return nil, a.fetchBatch(ctx, days)
	})
	return err
}

func (a *Aggregator) fetchBatch(ctx context.Context, days int) error {
	a.mu.Lock()
	a.loading = true
	a.err = nil
	a.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		a.settle("overview", a.fetchOverall(ctx))
	}()
	go func() {
		defer wg.Done()
		a.settle("completion_rates", a.fetchCompletionRates(ctx, days))
	}()
	go func() {
		defer wg.Done()
		a.settle("daily_completions", a.fetchDailyCompletions(ctx, days))
	}()

	wg.Wait()

	a.mu.Lock()
	a.loading = false
	err := a.err
	a.mu.Unlock()
	return err
}

// settle records one sub-fetch outcome. The first error wins the shared slot;
// later ones are only logged.
func (a *Aggregator) settle(name string, err error) {
	if err == nil {
		return
	}
	a.logger.Error("Statistics fetch failed", zap.String("query", name), zap.Error(err))
	a.mu.Lock()
	if a.err == nil {
		a.err = err
	}
	a.mu.Unlock()
}

func (a *Aggregator) fetchOverall(ctx context.Context) error {
	overall, err := a.gateway.OverallStats(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.overall = overall
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) fetchCompletionRates(ctx context.Context, days int) error {
	rates, err := a.gateway.HabitCompletionRates(ctx, days)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.rates = rates
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) fetchDailyCompletions(ctx context.Context, days int) error {
	daily, err := a.gateway.DailyCompletions(ctx, days)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.daily = daily
	a.mu.Unlock()
	return nil
}

// FetchOverallStats refreshes just the overview, under the shared batch
// loading flag.
func (a *Aggregator) FetchOverallStats(ctx context.Context) error {
	return a.single(func() error { return a.fetchOverall(ctx) })
}

// FetchHabitCompletionRates refreshes just the completion rates.
func (a *Aggregator) FetchHabitCompletionRates(ctx context.Context, days int) error {
	return a.single(func() error { return a.fetchCompletionRates(ctx, days) })
}

// FetchDailyCompletions refreshes just the daily series.
func (a *Aggregator) FetchDailyCompletions(ctx context.Context, days int) error {
	return a.single(func() error { return a.fetchDailyCompletions(ctx, days) })
}

func (a *Aggregator) single(fetch func() error) error {
	a.mu.Lock()
	a.loading = true
	a.err = nil
	a.mu.Unlock()

	err := fetch()

	a.mu.Lock()
	a.err = err
	a.loading = false
	a.mu.Unlock()
	return err
}

// FetchHabitStats is an on-demand single-habit query, outside the batch
// group: it does not touch the shared loading flag or error, so many open
// detail panels do not contend on one flag. Concurrent calls for the same
// habit share one request.
func (a *Aggregator) FetchHabitStats(ctx context.Context, habitID string) (*model.HabitStats, error) {
	v, err, _ := a.group.Do("habit-stats:"+habitID, func() (any, error) {
		return a.gateway.HabitStats(ctx, habitID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.HabitStats), nil
}

// FetchHabitProgress is the per-habit progress series, also outside the batch
// group.
func (a *Aggregator) FetchHabitProgress(ctx context.Context, habitID string, days int) ([]model.ProgressPoint, error) {
	v, err, _ := a.group.Do("habit-progress:"+habitID+":"+strconv.Itoa(days), func() (any, error) {
		return a.gateway.HabitProgress(ctx, habitID, days)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.ProgressPoint), nil
}

// Snapshot returns the current batch state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Overall:          a.overall,
		CompletionRates:  a.rates,
		DailyCompletions: a.daily,
		Loading:          a.loading,
		Err:              a.err,
	}
}
