package format

import (
	"fmt"
	"regexp"
	"time"

	"salesdash/internal/logger"
)

var (
	monthKey   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	quarterKey = regexp.MustCompile(`^\d{4}-Q[1-4]$`)
)

// ChartLabels converts period keys into axis labels for the period type.
// MS keys ("2025-03") become "Mar 2025"; QS and YS keys are already
// readable. Keys that do not match the expected shape are passed through
// unchanged and reported once per call.
func ChartLabels(labels []string, periodType string) []string {
	out := make([]string, len(labels))
	var bad []string
	for i, l := range labels {
		out[i] = l
		switch periodType {
		case "MS":
			if !monthKey.MatchString(l) {
				bad = append(bad, l)
				continue
			}
			t, err := time.Parse("2006-01", l)
			if err != nil {
				bad = append(bad, l)
				continue
			}
			out[i] = t.Format("Jan 2006")
		case "QS":
			if !quarterKey.MatchString(l) {
				bad = append(bad, l)
			}
		}
	}
	if len(bad) > 0 {
		logger.Warn("unrecognised period labels", logger.Fields{"period_type": periodType, "labels": bad})
	}
	return out
}

// PeriodName is the axis title for a period type
func PeriodName(periodType string) string {
	switch periodType {
	case "MS":
		return "Month"
	case "QS":
		return "Quarter"
	case "YS":
		return "Year"
	}
	return "Period"
}

// DateOption is one entry of a per-chart date picker
type DateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthOptions lists every month between from and to (inclusive),
// most recent first. Values are first-of-month dates.
func MonthOptions(from, to time.Time) []DateOption {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	var opts []DateOption
	for m := end; !m.Before(start); m = m.AddDate(0, -1, 0) {
		opts = append(opts, DateOption{
			Value: m.Format("2006-01-02"),
			Label: m.Format("Jan 2006"),
		})
	}
	return opts
}

// ParseDate parses an ISO yyyy-mm-dd date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
