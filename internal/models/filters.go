package models

// FilterParams is the resolved set of filters sent with a chart request
type FilterParams struct {
	PeriodType    string `json:"period_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	ForecastStart string `json:"forecast_start"`
	Region        string `json:"region"`
	// SelectedDate is the per-chart override, empty when none is set
	SelectedDate string `json:"selected_date,omitempty"`
}

// HasSelectedDate reports whether a specific period is selected
func (p FilterParams) HasSelectedDate() bool {
	return p.SelectedDate != "" && p.SelectedDate != "all"
}
