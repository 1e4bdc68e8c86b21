package fetchers

import (
	"context"
	"net/url"

	"salesdash/internal/models"
)

// Paths of the metrics API
const (
	PathSummaryMetrics  = "/api/summary-metrics"
	PathUniqueCustomers = "/api/sales-orders-unique-customers"
	PathSalesFunnel     = "/api/sales-funnel"
	PathSalesperson     = "/api/sales-by-salesperson"
	PathSalesRegion     = "/api/sales-by-region"
	PathSalesCustomer   = "/api/sales-by-customer"
	PathSalesCategory   = "/api/sales-by-category"
	PathTargetAchieved  = "/api/sales-target-vs-achievement"
	PathGrowthRate      = "/api/sales-growth-rate"
	PathRepeatVsNew     = "/api/repeat-vs-new-sales"
	PathSalesTrend      = "/api/sales-trend"
	PathRecentActivity  = "/api/recent-activity"
	PathTopPerformers   = "/api/top-performers"
	PathPendingOrders   = "/api/pending-orders"
	PathRegions         = "/api/regions"
)

var (
	summarySchema = MustSchema("summary-metrics", `{
		"type": "object",
		"properties": {"total_sales": {"type": "number"}, "avg_order_value": {"type": "number"}},
		"required": ["total_sales", "avg_order_value"]
	}`)
	uniqueCustomersSchema = MustSchema("unique-customers", `{
		"type": "object",
		"properties": {"new_customers": {"type": "number"}},
		"required": ["new_customers"]
	}`)
	// FunnelSchema is shared by the funnel chart and the conversion rate card
	FunnelSchema = MustSchema("sales-funnel", `{
		"type": "object",
		"properties": {
			"leads": {"type": "number"}, "quotes": {"type": "number"},
			"orders": {"type": "number"}, "invoices": {"type": "number"}
		},
		"required": ["leads", "quotes", "orders", "invoices"]
	}`)
	// SalespersonSchema is shared by the salesperson chart and the top performers card
	SalespersonSchema = ArraysSchema("sales-by-salesperson", []string{"salespersons"}, []string{"sales"})

	activitySchema = MustSchema("recent-activity", `{
		"type": "object",
		"properties": {"activities": {"type": "array", "items": {"type": "object"}}},
		"required": ["activities"]
	}`)
	performersSchema = MustSchema("top-performers", `{
		"type": "array",
		"items": {"type": "object", "required": ["name"]}
	}`)
	pendingOrdersSchema = MustSchema("pending-orders", `{
		"type": "array",
		"items": {"type": "object", "required": ["order_id"]}
	}`)
	regionsSchema = ArraysSchema("regions", []string{"regions"}, nil)
)

// RangeQuery is the start/end/region query the metric cards send.
// The region is omitted when it is "all".
func RangeQuery(p models.FilterParams) url.Values {
	q := url.Values{}
	q.Set("start_date", p.StartDate)
	q.Set("end_date", p.EndDate)
	if p.Region != "" && p.Region != "all" {
		q.Set("region", p.Region)
	}
	return q
}

// SummaryMetrics fetches total sales and average order value
func (c *Client) SummaryMetrics(ctx context.Context, widget string, p models.FilterParams) (*models.SummaryMetrics, error) {
	var out models.SummaryMetrics
	if err := c.GetJSON(ctx, widget, PathSummaryMetrics, RangeQuery(p), summarySchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UniqueCustomers fetches the number of new customers in range
func (c *Client) UniqueCustomers(ctx context.Context, widget string, p models.FilterParams) (*models.UniqueCustomers, error) {
	var out models.UniqueCustomers
	if err := c.GetJSON(ctx, widget, PathUniqueCustomers, RangeQuery(p), uniqueCustomersSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Funnel fetches funnel stage counts for a date range
func (c *Client) Funnel(ctx context.Context, widget string, p models.FilterParams) (*models.FunnelPayload, error) {
	var out models.FunnelPayload
	if err := c.GetJSON(ctx, widget, PathSalesFunnel, RangeQuery(p), FunnelSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Salespersons fetches sales per salesperson for a date range
func (c *Client) Salespersons(ctx context.Context, widget string, p models.FilterParams) (*models.SalespersonPayload, error) {
	var out models.SalespersonPayload
	if err := c.GetJSON(ctx, widget, PathSalesperson, RangeQuery(p), SalespersonSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentActivity fetches the activity feed. query is either a date range
// or a single "filter" value.
func (c *Client) RecentActivity(ctx context.Context, widget string, query url.Values) (*models.ActivityFeed, error) {
	var out models.ActivityFeed
	if err := c.GetJSON(ctx, widget, PathRecentActivity, query, activitySchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopPerformers fetches the ranked performer list for a period filter
func (c *Client) TopPerformers(ctx context.Context, widget, filter string) ([]models.Performer, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	var out []models.Performer
	if err := c.GetJSON(ctx, widget, PathTopPerformers, q, performersSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingOrders fetches orders awaiting invoicing
func (c *Client) PendingOrders(ctx context.Context, widget string) ([]models.PendingOrder, error) {
	var out []models.PendingOrder
	if err := c.GetJSON(ctx, widget, PathPendingOrders, nil, pendingOrdersSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Regions fetches the selectable region names
func (c *Client) Regions(ctx context.Context) ([]string, error) {
	var out models.RegionList
	if err := c.GetJSON(ctx, "regions", PathRegions, nil, regionsSchema, &out); err != nil {
		return nil, err
	}
	return out.Regions, nil
}
