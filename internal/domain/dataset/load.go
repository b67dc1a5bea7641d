package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/corey/chatmon/internal/ports"
)

// ErrEmptyDataset is reported when a source returns text but no row survives
// parsing.
var ErrEmptyDataset = errors.New("dataset has no usable rows")

// fallbackText is the built-in dataset substituted when the configured one is
// unavailable. It goes through the normal parser so the fallback table obeys
// the same normalization as any other.
const fallbackText = "Question,Response\nHi,Welcome back!"

// Fallback returns the built-in single-entry table.
func Fallback() ports.Table {
	return Parse(fallbackText)
}

// LoadReport summarizes one dataset load.
type LoadReport struct {
	Source    string
	Rows      int // data rows seen (header excluded)
	Kept      int
	Dropped   int
	HasHeader bool
	Fallback  bool  // true when the built-in table was substituted
	Err       error // why the fallback was used; nil otherwise
	Elapsed   time.Duration
}

// Load fetches text from src and parses it. It never fails: when the source
// errors, or yields no usable rows, the built-in table is returned instead
// and the report carries the cause. The returned table is never empty.
func Load(ctx context.Context, src ports.DatasetSource) (ports.Table, LoadReport) {
	start := time.Now()
	report := LoadReport{Source: src.Name()}

	text, err := src.Fetch(ctx)
	if err != nil {
		report.Fallback = true
		report.Err = err
		report.Elapsed = time.Since(start)
		return Fallback(), report
	}

	res := ParseDetailed(text)
	report.Rows = len(res.Rows)
	report.Kept = res.Kept()
	report.Dropped = res.Dropped()
	report.HasHeader = res.HasHeader

	if res.Kept() == 0 {
		report.Fallback = true
		report.Err = ErrEmptyDataset
		report.Elapsed = time.Since(start)
		return Fallback(), report
	}

	report.Elapsed = time.Since(start)
	return res.Table, report
}
