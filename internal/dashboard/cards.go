package dashboard

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/fetchers"
	"salesdash/internal/format"
	"salesdash/internal/logger"
	"salesdash/internal/models"
)

// Card ids, also used as the widget name on fetch errors
const (
	CardTotalSales     = "total-sales"
	CardAvgOrderValue  = "avg-order-value"
	CardNewCustomers   = "new-customers"
	CardConversionRate = "conversion-rate"
	CardTopPerformers  = "top-performers"
	CardRecentActivity = "recent-activity"
)

const (
	msgCardFailed          = "Failed to load data"
	msgNewCustomersFailed  = "Failed to load new customers"
	msgRecentActivityError = "Failed to load recent activity"
	topPerformerCount      = 3
)

// Card is one headline number
type Card struct {
	Value   string `json:"value"`
	Subtext string `json:"subtext,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PerformerCard is an entry in the top performers card
type PerformerCard struct {
	Name     string `json:"name"`
	Sales    string `json:"sales"`
	Progress int    `json:"progress"`
}

// Cards is the state of the metric cards after a load
type Cards struct {
	TotalSales          Card              `json:"total_sales"`
	AvgOrderValue       Card              `json:"avg_order_value"`
	NewCustomers        Card              `json:"new_customers"`
	ConversionRate      Card              `json:"conversion_rate"`
	TopPerformers       []PerformerCard   `json:"top_performers"`
	TopPerformersError  string            `json:"top_performers_error,omitempty"`
	RecentActivity      []models.Activity `json:"recent_activity"`
	RecentActivityError string            `json:"recent_activity_error,omitempty"`
}

// cardError keeps a message the server sent and replaces anything else
// with fallback.
func cardError(err error, fallback string) string {
	if errors.Is(err, models.ErrServerReported) {
		return models.UserMessage(err)
	}
	return fallback
}

// ConversionRate is invoices over orders in percent, 0 without orders
func ConversionRate(f models.FunnelPayload) float64 {
	if f.Orders <= 0 {
		return 0
	}
	return format.Round2(f.Invoices / f.Orders * 100)
}

// LoadCards fetches every metric card for p. Each card fails on its own;
// the returned error joins all card failures.
func (d *Dashboard) LoadCards(ctx context.Context, p models.FilterParams) (Cards, error) {
	var (
		mu    sync.Mutex
		cards Cards
		errs  []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		m, err := d.client.SummaryMetrics(ctx, CardTotalSales, p)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			msg := cardError(err, msgCardFailed)
			cards.TotalSales = Card{Error: msg}
			cards.AvgOrderValue = Card{Error: msg}
			errs = append(errs, err)
			return nil
		}
		cards.TotalSales = Card{Value: format.Currency(m.TotalSales), Subtext: "Updated"}
		cards.AvgOrderValue = Card{Value: format.Currency(m.AvgOrderValue), Subtext: "Updated"}
		return nil
	})
	g.Go(func() error {
		u, err := d.client.UniqueCustomers(ctx, CardNewCustomers, p)
		if err != nil {
			fail(err)
			mu.Lock()
			cards.NewCustomers = Card{Error: cardError(err, msgNewCustomersFailed)}
			mu.Unlock()
			return nil
		}
		mu.Lock()
		cards.NewCustomers = Card{Value: format.Count(u.NewCustomers), Subtext: "Updated"}
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		f, err := d.client.Funnel(ctx, CardConversionRate, p)
		if err != nil {
			fail(err)
			mu.Lock()
			cards.ConversionRate = Card{Error: cardError(err, msgCardFailed)}
			mu.Unlock()
			return nil
		}
		mu.Lock()
		cards.ConversionRate = Card{Value: format.Percent(ConversionRate(*f)), Subtext: "Updated"}
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		s, err := d.client.Salespersons(ctx, CardTopPerformers, p)
		if err != nil {
			fail(err)
			mu.Lock()
			cards.TopPerformersError = cardError(err, msgCardFailed)
			mu.Unlock()
			return nil
		}
		top := topPerformers(*s)
		mu.Lock()
		cards.TopPerformers = top
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		feed, err := d.client.RecentActivity(ctx, CardRecentActivity, fetchers.RangeQuery(p))
		if err != nil {
			fail(err)
			msg := msgRecentActivityError
			if errors.Is(err, models.ErrServerReported) {
				msg = "Error: " + models.UserMessage(err)
			}
			mu.Lock()
			cards.RecentActivity = nil
			cards.RecentActivityError = msg
			mu.Unlock()
			return nil
		}
		mu.Lock()
		cards.RecentActivity = feed.Activities
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	d.cards = cards
	d.mu.Unlock()

	if len(errs) > 0 {
		d.log.Warn("metric cards failed", logger.Fields{"failures": len(errs)})
	}
	return cards, errors.Join(errs...)
}

// Cards returns the cards from the last load
func (d *Dashboard) Cards() Cards {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cards
}

// topPerformers keeps the first three salespersons. Progress bars shrink
// by 15 points per rank starting at 90.
func topPerformers(s models.SalespersonPayload) []PerformerCard {
	n := len(s.Salespersons)
	if n > topPerformerCount {
		n = topPerformerCount
	}
	out := make([]PerformerCard, 0, n)
	for i := 0; i < n; i++ {
		var sales float64
		if i < len(s.Sales) {
			sales = s.Sales[i]
		}
		out = append(out, PerformerCard{
			Name:     s.Salespersons[i],
			Sales:    format.Currency(sales) + " in sales",
			Progress: 90 - i*15,
		})
	}
	return out
}

// PanelError is the text shown in a side panel that failed to load
func PanelError(err error) string {
	return "Error loading data: " + models.UserMessage(err)
}

// RecentActivity loads the activity side panel for a period filter
func (d *Dashboard) RecentActivity(ctx context.Context, filter string) ([]models.Activity, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	feed, err := d.client.RecentActivity(ctx, CardRecentActivity, q)
	if err != nil {
		return nil, err
	}
	return feed.Activities, nil
}

// TopPerformers loads the ranked side panel for a period filter
func (d *Dashboard) TopPerformers(ctx context.Context, filter string) ([]models.Performer, error) {
	return d.client.TopPerformers(ctx, CardTopPerformers, filter)
}

func (d *Dashboard) PendingOrders(ctx context.Context) ([]models.PendingOrder, error) {
	return d.client.PendingOrders(ctx, "pending-orders")
}

// Regions lists the regions offered by the region selector
func (d *Dashboard) Regions(ctx context.Context) ([]string, error) {
	return d.client.Regions(ctx)
}
