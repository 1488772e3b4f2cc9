// Package usage builds foreground-time reports for launchable applications.
package usage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/models"
)

// MinAggregateLevel is the lowest store API level that answers aggregated
// queries.
const MinAggregateLevel = 2

// DefaultWindow is the lookback used when none is configured.
const DefaultWindow = time.Hour

var (
	// ErrUnsupportedPlatform means the usage service cannot aggregate. Gate
	// on Supported before asking for a report.
	ErrUnsupportedPlatform = errors.New("usage service does not support aggregated queries")

	// ErrPlatformServiceUnavailable means a required service handle is missing.
	ErrPlatformServiceUnavailable = errors.New("usage platform service unavailable")

	// ErrInvalidWindow is returned for negative lookback windows.
	ErrInvalidWindow = errors.New("usage window must not be negative")
)

// StatsService is the platform usage-tracking service.
type StatsService interface {
	QueryAndAggregateUsageStats(ctx context.Context, begin, end time.Time) (map[string]models.UsageStats, error)
	APILevel(ctx context.Context) (int, error)
}

// CatalogResolver lists the launchable applications.
type CatalogResolver interface {
	LaunchableApps(ctx context.Context) (catalog.Catalog, error)
}

// Aggregator joins usage stats with the catalog.
type Aggregator struct {
	stats   StatsService
	catalog CatalogResolver
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// NewAggregator creates an aggregator.
func NewAggregator(stats StatsService, resolver CatalogResolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		stats:   stats,
		catalog: resolver,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Supported reports whether the usage service can answer UsageReport.
func (a *Aggregator) Supported(ctx context.Context) (bool, error) {
	if a == nil || a.stats == nil {
		return false, ErrPlatformServiceUnavailable
	}
	level, err := a.stats.APILevel(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read usage service level: %w", err)
	}
	return level >= MinAggregateLevel, nil
}

// UsageReport returns the foreground time of every launchable application
// over the window ending now, longest first. Packages that are not
// launchable or were never in the foreground are left out.
func (a *Aggregator) UsageReport(ctx context.Context, window time.Duration) (Report, error) {
	if a == nil || a.stats == nil || a.catalog == nil {
		return Report{}, ErrPlatformServiceUnavailable
	}
	if window < 0 {
		return Report{}, ErrInvalidWindow
	}

	supported, err := a.Supported(ctx)
	if err != nil {
		return Report{}, err
	}
	if !supported {
		return Report{}, ErrUnsupportedPlatform
	}

	end := a.now()
	begin := end.Add(-window)
	report := Report{Window: window, Begin: begin, End: end, Records: []Record{}}
	if window == 0 {
		return report, nil
	}

	stats, err := a.stats.QueryAndAggregateUsageStats(ctx, begin, end)
	if err != nil {
		return Report{}, fmt.Errorf("failed to query usage stats: %w", err)
	}

	apps, err := a.catalog.LaunchableApps(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list launchable apps: %w", err)
	}

	report.Records = Aggregate(stats, apps.Names())

	a.logger.Debug("usage report built",
		zap.Duration("window", window),
		zap.Int("stats", len(stats)),
		zap.Int("catalog", len(apps)),
		zap.Int("records", len(report.Records)))

	return report, nil
}

// Aggregate keeps the stats of catalog packages with non-zero foreground
// time and sorts them by duration descending, then package id ascending.
func Aggregate(stats map[string]models.UsageStats, names map[string]string) []Record {
	records := lo.FilterMap(lo.Entries(stats), func(e lo.Entry[string, models.UsageStats], _ int) (Record, bool) {
		if e.Value.TotalForegroundMs <= 0 {
			return Record{}, false
		}
		name, ok := names[e.Key]
		if !ok {
			return Record{}, false
		}
		return Record{
			PackageID:            e.Key,
			DisplayName:          name,
			ForegroundDurationMs: e.Value.TotalForegroundMs,
		}, true
	})

	slices.SortFunc(records, func(x, y Record) int {
		if c := cmp.Compare(y.ForegroundDurationMs, x.ForegroundDurationMs); c != 0 {
			return c
		}
		return cmp.Compare(x.PackageID, y.PackageID)
	})
	return records
}
