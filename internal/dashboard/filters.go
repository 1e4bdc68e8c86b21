package dashboard

import (
	"sync"

	vd "github.com/bytedance/go-tagexpr/v2/validator"

	"salesdash/internal/charts"
	"salesdash/internal/config"
	"salesdash/internal/format"
	"salesdash/internal/models"
)

// Ordering errors shown to the user
const (
	msgStartAfterEnd    = "Start Date cannot be after End Date."
	msgForecastNotAfter = "Forecast Start must be after End Date."
)

// FilterState is the set of global filters
type FilterState struct {
	PeriodType    string `json:"period_type" vd:"in($,'MS','QS','YS');msg:'Period type must be one of MS, QS or YS.'"`
	StartDate     string `json:"start_date" vd:"regexp('^[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]$');msg:'Start Date must be a YYYY-MM-DD date.'"`
	EndDate       string `json:"end_date" vd:"regexp('^[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]$');msg:'End Date must be a YYYY-MM-DD date.'"`
	ForecastStart string `json:"forecast_start" vd:"regexp('^[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]$');msg:'Forecast Start must be a YYYY-MM-DD date.'"`
	Region        string `json:"region" vd:"len($)>0;msg:'Region is required.'"`
}

// DefaultFilters is the canonical set used on first load and on reset
func DefaultFilters() FilterState {
	return FilterState{
		PeriodType:    "MS",
		StartDate:     "2024-01-01",
		EndDate:       "2025-12-31",
		ForecastStart: "2026-01-01",
		Region:        "all",
	}
}

// FiltersFromConfig reads the configured defaults
func FiltersFromConfig(cfg *config.Config) FilterState {
	return FilterState{
		PeriodType:    cfg.DefaultPeriodType,
		StartDate:     cfg.DefaultStartDate,
		EndDate:       cfg.DefaultEndDate,
		ForecastStart: cfg.DefaultForecastStart,
		Region:        cfg.DefaultRegion,
	}.WithDefaults(DefaultFilters())
}

// WithDefaults fills empty fields from d
func (f FilterState) WithDefaults(d FilterState) FilterState {
	if f.PeriodType == "" {
		f.PeriodType = d.PeriodType
	}
	if f.StartDate == "" {
		f.StartDate = d.StartDate
	}
	if f.EndDate == "" {
		f.EndDate = d.EndDate
	}
	if f.ForecastStart == "" {
		f.ForecastStart = d.ForecastStart
	}
	if f.Region == "" {
		f.Region = d.Region
	}
	return f
}

// Validate checks field formats and date ordering. Errors are
// ErrInvalidFilter and carry the message shown to the user.
func (f FilterState) Validate() error {
	if err := vd.Validate(&f, false); err != nil {
		return models.NewChartError("", models.ErrInvalidFilter, err.Error(), nil)
	}
	start, err := format.ParseDate(f.StartDate)
	if err != nil {
		return models.NewChartError("", models.ErrInvalidFilter, "Start Date is not a valid date.", err)
	}
	end, err := format.ParseDate(f.EndDate)
	if err != nil {
		return models.NewChartError("", models.ErrInvalidFilter, "End Date is not a valid date.", err)
	}
	forecast, err := format.ParseDate(f.ForecastStart)
	if err != nil {
		return models.NewChartError("", models.ErrInvalidFilter, "Forecast Start is not a valid date.", err)
	}
	if start.After(end) {
		return models.NewChartError("", models.ErrInvalidFilter, msgStartAfterEnd, nil)
	}
	if !forecast.After(end) {
		return models.NewChartError("", models.ErrInvalidFilter, msgForecastNotAfter, nil)
	}
	return nil
}

// Params combines the global filters with one chart's selected date
func (f FilterState) Params(selectedDate string) models.FilterParams {
	return models.FilterParams{
		PeriodType:    f.PeriodType,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		ForecastStart: f.ForecastStart,
		Region:        f.Region,
		SelectedDate:  selectedDate,
	}
}

// FilterStore holds the global filters, the per-chart selected dates and
// the per-chart kind selection.
type FilterStore struct {
	mu          sync.RWMutex
	defaults    FilterState
	state       FilterState
	selected    map[string]string
	kinds       map[string]charts.Kind
	dateOptions []format.DateOption
}

// NewFilterStore starts from defaults. kinds holds each chart's initial kind.
func NewFilterStore(defaults FilterState, kinds map[string]charts.Kind, dateOptions []format.DateOption) *FilterStore {
	defaults = defaults.WithDefaults(DefaultFilters())
	s := &FilterStore{
		defaults:    defaults,
		state:       defaults,
		selected:    make(map[string]string),
		kinds:       make(map[string]charts.Kind, len(kinds)),
		dateOptions: dateOptions,
	}
	for id, k := range kinds {
		s.kinds[id] = k
	}
	return s
}

// State returns the current global filters with defaults applied
func (s *FilterStore) State() FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *FilterStore) Defaults() FilterState {
	return s.defaults
}

// Apply validates and stores new global filters. Empty fields take the
// defaults. On success every per-chart selected date is cleared; on
// failure nothing changes.
func (s *FilterStore) Apply(in FilterState) (FilterState, error) {
	next := in.WithDefaults(s.defaults)
	if err := next.Validate(); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	s.selected = make(map[string]string)
	return next, nil
}

// SetRegion changes only the region filter
func (s *FilterStore) SetRegion(region string) FilterState {
	if region == "" {
		region = s.defaults.Region
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Region = region
	return s.state
}

// Reset restores the defaults and clears every per-chart selected date.
// Kind selections survive a reset.
func (s *FilterStore) Reset() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.defaults
	s.selected = make(map[string]string)
	return s.state
}

// Params resolves the filters one chart is fetched with
func (s *FilterStore) Params(chartID string) models.FilterParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Params(s.selected[chartID])
}

// SetChartFilter selects a date for one chart. "" clears the selection,
// "all" selects every period.
func (s *FilterStore) SetChartFilter(chartID, date string) error {
	if date == "" {
		s.ClearChartFilter(chartID)
		return nil
	}
	if date != "all" {
		if _, err := format.ParseDate(date); err != nil {
			return models.NewChartError(chartID, models.ErrInvalidFilter, "Selected date must be a YYYY-MM-DD date.", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[chartID] = date
	return nil
}

func (s *FilterStore) ClearChartFilter(chartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, chartID)
}

// ChartFilter returns the selected date of a chart, "" when none
func (s *FilterStore) ChartFilter(chartID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[chartID]
}

// ChartFilters returns every chart that has a selected date
func (s *FilterStore) ChartFilters() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.selected))
	for k, v := range s.selected {
		out[k] = v
	}
	return out
}

// Kind is the kind selected for a chart, bar when none was set
func (s *FilterStore) Kind(chartID string) charts.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k, ok := s.kinds[chartID]; ok && k != "" {
		return k
	}
	return charts.KindBar
}

func (s *FilterStore) SetKind(chartID string, k charts.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds[chartID] = k
}

// DateOptions lists the months selectable per chart
func (s *FilterStore) DateOptions() []format.DateOption {
	return append([]format.DateOption(nil), s.dateOptions...)
}
