package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/models"
)

type fakeStats struct {
	level    int
	levelErr error
	stats    map[string]models.UsageStats
	err      error

	queries int
	begin   time.Time
	end     time.Time
}

func (f *fakeStats) QueryAndAggregateUsageStats(ctx context.Context, begin, end time.Time) (map[string]models.UsageStats, error) {
	f.queries++
	f.begin, f.end = begin, end
	return f.stats, f.err
}

func (f *fakeStats) APILevel(ctx context.Context) (int, error) {
	return f.level, f.levelErr
}

type fakeCatalog struct {
	apps catalog.Catalog
	err  error
}

func (f *fakeCatalog) LaunchableApps(ctx context.Context) (catalog.Catalog, error) {
	return f.apps, f.err
}

func apps(pairs ...string) catalog.Catalog {
	c := catalog.Catalog{}
	for i := 0; i+1 < len(pairs); i += 2 {
		c[pairs[i]] = catalog.App{PackageID: pairs[i], DisplayName: pairs[i+1]}
	}
	return c
}

func stat(id string, ms int64) models.UsageStats {
	return models.UsageStats{PackageID: id, TotalForegroundMs: ms, EventCount: 1}
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestAggregator(stats StatsService, cat CatalogResolver) *Aggregator {
	return NewAggregator(stats, cat, WithClock(func() time.Time { return fixedNow }))
}

func TestUsageReport_FilterAndSort(t *testing.T) {
	stats := &fakeStats{
		level: MinAggregateLevel,
		stats: map[string]models.UsageStats{
			"com.a": stat("com.a", 300000),
			"com.b": stat("com.b", 120000),
			"com.c": stat("com.c", 0),
		},
	}
	cat := &fakeCatalog{apps: apps("com.a", "Alpha", "com.b", "Beta", "com.c", "Gamma")}

	report, err := newTestAggregator(stats, cat).UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("UsageReport() error: %v", err)
	}

	want := []Record{
		{PackageID: "com.a", DisplayName: "Alpha", ForegroundDurationMs: 300000},
		{PackageID: "com.b", DisplayName: "Beta", ForegroundDurationMs: 120000},
	}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
	if !stats.end.Equal(fixedNow) || !stats.begin.Equal(fixedNow.Add(-time.Hour)) {
		t.Errorf("query interval = [%v, %v], want [%v, %v]", stats.begin, stats.end, fixedNow.Add(-time.Hour), fixedNow)
	}
}

func TestUsageReport_ExcludesNonLaunchable(t *testing.T) {
	stats := &fakeStats{
		level: MinAggregateLevel,
		stats: map[string]models.UsageStats{
			"com.a":         stat("com.a", 1000),
			"com.sysdaemon": stat("com.sysdaemon", 999999),
		},
	}
	cat := &fakeCatalog{apps: apps("com.a", "Alpha")}

	report, err := newTestAggregator(stats, cat).UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("UsageReport() error: %v", err)
	}

	want := []Record{{PackageID: "com.a", DisplayName: "Alpha", ForegroundDurationMs: 1000}}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageReport_TieBreakByPackageID(t *testing.T) {
	stats := &fakeStats{
		level: MinAggregateLevel,
		stats: map[string]models.UsageStats{
			"zeta":  stat("zeta", 5000),
			"alpha": stat("alpha", 5000),
			"mid":   stat("mid", 7000),
		},
	}
	cat := &fakeCatalog{apps: apps("zeta", "Z", "alpha", "A", "mid", "M")}

	report, err := newTestAggregator(stats, cat).UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("UsageReport() error: %v", err)
	}

	if diff := cmp.Diff([]string{"mid", "alpha", "zeta"}, report.PackageIDs()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageReport_Empty(t *testing.T) {
	stats := &fakeStats{level: MinAggregateLevel, stats: map[string]models.UsageStats{}}
	cat := &fakeCatalog{apps: apps("com.a", "Alpha")}

	report, err := newTestAggregator(stats, cat).UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("UsageReport() error: %v", err)
	}
	if report.Records == nil || len(report.Records) != 0 {
		t.Errorf("Records = %#v, want empty non-nil slice", report.Records)
	}
}

func TestUsageReport_ZeroWindowSkipsQuery(t *testing.T) {
	stats := &fakeStats{level: MinAggregateLevel}
	report, err := newTestAggregator(stats, &fakeCatalog{}).UsageReport(context.Background(), 0)
	if err != nil {
		t.Fatalf("UsageReport() error: %v", err)
	}
	if len(report.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(report.Records))
	}
	if stats.queries != 0 {
		t.Errorf("queries = %d, want 0", stats.queries)
	}
}

func TestUsageReport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		agg    *Aggregator
		window time.Duration
		want   error
	}{
		{
			name:   "nil aggregator",
			agg:    nil,
			window: time.Hour,
			want:   ErrPlatformServiceUnavailable,
		},
		{
			name:   "nil stats service",
			agg:    NewAggregator(nil, &fakeCatalog{}),
			window: time.Hour,
			want:   ErrPlatformServiceUnavailable,
		},
		{
			name:   "negative window",
			agg:    newTestAggregator(&fakeStats{level: MinAggregateLevel}, &fakeCatalog{}),
			window: -time.Minute,
			want:   ErrInvalidWindow,
		},
		{
			name:   "legacy store",
			agg:    newTestAggregator(&fakeStats{level: MinAggregateLevel - 1}, &fakeCatalog{}),
			window: time.Hour,
			want:   ErrUnsupportedPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.agg.UsageReport(context.Background(), tt.window)
			if !errors.Is(err, tt.want) {
				t.Errorf("UsageReport() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUsageReport_PropagatesQueryError(t *testing.T) {
	boom := errors.New("disk I/O error")
	stats := &fakeStats{level: MinAggregateLevel, err: boom}

	_, err := newTestAggregator(stats, &fakeCatalog{}).UsageReport(context.Background(), time.Hour)
	if !errors.Is(err, boom) {
		t.Errorf("UsageReport() error = %v, want wrapping %v", err, boom)
	}
}

func TestUsageReport_Idempotent(t *testing.T) {
	stats := &fakeStats{
		level: MinAggregateLevel,
		stats: map[string]models.UsageStats{
			"b": stat("b", 10),
			"a": stat("a", 10),
			"c": stat("c", 30),
		},
	}
	agg := newTestAggregator(stats, &fakeCatalog{apps: apps("a", "A", "b", "B", "c", "C")})

	first, err := agg.UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	second, err := agg.UsageReport(context.Background(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reports differ (-first +second):\n%s", diff)
	}
}

func TestSupported(t *testing.T) {
	agg := NewAggregator(&fakeStats{level: MinAggregateLevel}, nil)
	ok, err := agg.Supported(context.Background())
	if err != nil || !ok {
		t.Errorf("Supported() = %v, %v; want true, nil", ok, err)
	}

	agg = NewAggregator(&fakeStats{level: 1}, nil)
	ok, err = agg.Supported(context.Background())
	if err != nil || ok {
		t.Errorf("Supported() = %v, %v; want false, nil", ok, err)
	}

	if _, err := NewAggregator(nil, nil).Supported(context.Background()); !errors.Is(err, ErrPlatformServiceUnavailable) {
		t.Errorf("Supported() error = %v, want %v", err, ErrPlatformServiceUnavailable)
	}
}

func TestReportShare(t *testing.T) {
	r := Report{Records: []Record{
		{PackageID: "a", ForegroundDurationMs: 750},
		{PackageID: "b", ForegroundDurationMs: 250},
	}}
	if got := r.Share(0); got != 75 {
		t.Errorf("Share(0) = %v, want 75", got)
	}
	if got := r.Share(5); got != 0 {
		t.Errorf("Share(5) = %v, want 0", got)
	}
	if got := (Report{}).Share(0); got != 0 {
		t.Errorf("empty Share(0) = %v, want 0", got)
	}
}

func TestReportShares(t *testing.T) {
	r := Report{Records: []Record{
		{PackageID: "a", ForegroundDurationMs: 600},
		{PackageID: "b", ForegroundDurationMs: 300},
		{PackageID: "c", ForegroundDurationMs: 100},
	}}
	if diff := cmp.Diff([]float64{60, 30, 10}, r.Shares()); diff != "" {
		t.Errorf("Shares() mismatch (-want +got):\n%s", diff)
	}
	if got := (Report{}).Shares(); len(got) != 0 {
		t.Errorf("empty Shares() = %v, want none", got)
	}
	zero := Report{Records: []Record{{PackageID: "a"}}}
	if diff := cmp.Diff([]float64{0}, zero.Shares()); diff != "" {
		t.Errorf("zero-total Shares() mismatch (-want +got):\n%s", diff)
	}
}
