package usage

import "time"

// Record is the foreground time of one launchable application.
type Record struct {
	PackageID            string `json:"package_id"`
	DisplayName          string `json:"display_name"`
	ForegroundDurationMs int64  `json:"foreground_duration_ms"`
}

// Duration returns the foreground time as a time.Duration.
func (r Record) Duration() time.Duration {
	return time.Duration(r.ForegroundDurationMs) * time.Millisecond
}

// Report is one query cycle's records, longest first.
type Report struct {
	Window  time.Duration `json:"window"`
	Begin   time.Time     `json:"begin"`
	End     time.Time     `json:"end"`
	Records []Record      `json:"records"`
}

// TotalMs sums the foreground time of all records.
func (r Report) TotalMs() int64 {
	var total int64
	for _, rec := range r.Records {
		total += rec.ForegroundDurationMs
	}
	return total
}

// Share returns record i's percentage of the total.
func (r Report) Share(i int) float64 {
	if i < 0 || i >= len(r.Records) {
		return 0
	}
	return share(r.Records[i].ForegroundDurationMs, r.TotalMs())
}

// Shares returns every record's percentage of the total, in report order.
func (r Report) Shares() []float64 {
	total := r.TotalMs()
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = share(rec.ForegroundDurationMs, total)
	}
	return out
}

func share(ms, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(ms) / float64(total) * 100.0
}

// PackageIDs lists the record package ids in report order.
func (r Report) PackageIDs() []string {
	ids := make([]string, len(r.Records))
	for i, rec := range r.Records {
		ids[i] = rec.PackageID
	}
	return ids
}
