package models

import (
	"bytes"
	"encoding/json"
)

// FlexString accepts either a JSON string or a JSON number
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Series is a list of periods with one value each
type Series struct {
	Periods []string  `json:"periods"`
	Sales   []float64 `json:"sales"`
}

// TrendPayload is returned by /api/sales-trend
type TrendPayload struct {
	Actual     Series `json:"actual"`
	Predicted  Series `json:"predicted"`
	Forecast   Series `json:"forecast"`
	PeriodType string `json:"period_type"`
}

// RegionPayload is returned by /api/sales-by-region
type RegionPayload struct {
	Regions []string  `json:"regions"`
	Sales   []float64 `json:"sales"`
}

// FunnelPayload is returned by /api/sales-funnel
type FunnelPayload struct {
	Leads    float64 `json:"leads"`
	Quotes   float64 `json:"quotes"`
	Orders   float64 `json:"orders"`
	Invoices float64 `json:"invoices"`
}

// CustomerPayload is returned by /api/sales-by-customer
type CustomerPayload struct {
	Customers             []string  `json:"customers"`
	Revenues              []float64 `json:"revenues"`
	CumulativePercentages []float64 `json:"cumulative_percentages"`
}

// SalespersonPayload is returned by /api/sales-by-salesperson
type SalespersonPayload struct {
	Salespersons []string  `json:"salespersons"`
	Sales        []float64 `json:"sales"`
}

// TargetPayload is returned by /api/sales-target-vs-achievement
type TargetPayload struct {
	Labels      []string  `json:"labels"`
	Targets     []float64 `json:"targets"`
	Achieved    []float64 `json:"achieved"`
	Percentages []float64 `json:"percentages"`
}

// CategoryPayload is returned by /api/sales-by-category. Sales are shares in percent.
type CategoryPayload struct {
	Categories []string  `json:"categories"`
	Sales      []float64 `json:"sales"`
}

// GrowthPayload is returned by /api/sales-growth-rate
type GrowthPayload struct {
	Periods     []string  `json:"periods"`
	GrowthRates []float64 `json:"growth_rates"`
	PeriodType  string    `json:"period_type"`
}

// RepeatVsNewPayload is returned by /api/repeat-vs-new-sales
type RepeatVsNewPayload struct {
	Periods     []string  `json:"periods"`
	RepeatSales []float64 `json:"repeat_sales"`
	NewSales    []float64 `json:"new_sales"`
	PeriodType  string    `json:"period_type"`
}

// SummaryMetrics is returned by /api/summary-metrics
type SummaryMetrics struct {
	TotalSales    float64 `json:"total_sales"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// UniqueCustomers is returned by /api/sales-orders-unique-customers
type UniqueCustomers struct {
	NewCustomers float64 `json:"new_customers"`
}

// Activity is one entry of /api/recent-activity
type Activity struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Details     string `json:"details"`
	Time        string `json:"time"`
}

// ActivityFeed is returned by /api/recent-activity
type ActivityFeed struct {
	Activities []Activity `json:"activities"`
}

// Performer is one entry of /api/top-performers
type Performer struct {
	Name     string  `json:"name"`
	Sales    float64 `json:"sales"`
	Image    string  `json:"image"`
	Progress float64 `json:"progress"`
}

// PendingOrder is one entry of /api/pending-orders
type PendingOrder struct {
	OrderID         FlexString `json:"order_id"`
	CustomerName    string     `json:"customer_name"`
	SalespersonName string     `json:"salesperson_name"`
	OrderDate       string     `json:"order_date"`
	TotalAmount     float64    `json:"total_amount"`
}

// RegionList is returned by /api/regions
type RegionList struct {
	Regions []string `json:"regions"`
}
