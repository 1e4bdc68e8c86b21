package mocks

// DefaultPayloads is a small but complete dataset, keyed by API path
var DefaultPayloads = map[string]string{
	"/api/summary-metrics":               `{"total_sales": 1234567.5, "avg_order_value": 2500}`,
	"/api/sales-orders-unique-customers": `{"new_customers": 1200}`,
	"/api/sales-funnel":                  `{"leads": 100, "quotes": 80, "orders": 40, "invoices": 30}`,
	"/api/sales-by-salesperson": `{
		"salespersons": ["Asha", "Ravi", "Meera", "Kiran"],
		"sales": [500000, 400000, 300000, 200000]
	}`,
	"/api/sales-by-region": `{"regions": ["North", "South", "West"], "sales": [1234.5, 987.25, 400]}`,
	"/api/sales-by-customer": `{
		"customers": ["Acme Paints", "Blue Hardware", "City Decor"],
		"revenues": [60000, 30000, 10000],
		"cumulative_percentages": [60, 90, 100]
	}`,
	"/api/sales-by-category": `{"categories": ["Paint", "Primer", "Putty"], "sales": [50, 30, 20]}`,
	"/api/sales-target-vs-achievement": `{
		"labels": ["2025-01", "2025-02"],
		"targets": [2000000, 2200000],
		"achieved": [1500000, 2300000],
		"percentages": [75, 104.55]
	}`,
	"/api/sales-growth-rate": `{"periods": ["2025-01", "2025-02", "2025-03"], "growth_rates": [4.5, -1.25, 6], "period_type": "MS"}`,
	"/api/repeat-vs-new-sales": `{
		"periods": ["2025-01", "2025-02"],
		"repeat_sales": [40000, 45000],
		"new_sales": [12000, 9000],
		"period_type": "MS"
	}`,
	"/api/sales-trend": `{
		"actual": {"periods": ["2025-01", "2025-02", "2025-03"], "sales": [100000, 120000, 110000]},
		"predicted": {"periods": ["2025-02", "2025-03"], "sales": [118000, 115000]},
		"forecast": {"periods": ["2025-04", "2025-05"], "sales": [125000, 130000]},
		"period_type": "MS"
	}`,
	"/api/recent-activity": `{"activities": [
		{"type": "order", "description": "Order SO-1042 placed", "details": "Acme Paints", "time": "2h ago"},
		{"type": "customer", "description": "New customer", "details": "City Decor", "time": "5h ago"}
	]}`,
	"/api/top-performers": `[
		{"name": "Asha", "sales": 500000, "image": "", "progress": 90},
		{"name": "Ravi", "sales": 400000, "image": "", "progress": 75}
	]`,
	"/api/pending-orders": `[
		{"order_id": 1042, "customer_name": "Acme Paints", "salesperson_name": "Asha", "order_date": "2025-04-02", "total_amount": 18500}
	]`,
	"/api/regions": `{"regions": ["North", "South", "West"]}`,
}
