package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"salesdash/internal/logger"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{123456, "₹1,23,456.00"},
		{1234567.5, "₹12,34,567.50"},
		{987654321.129, "₹98,76,54,321.13"},
		{-2500, "-₹2,500.00"},
	}
	for _, tt := range tests {
		if got := Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAxisCurrency(t *testing.T) {
	if got := AxisCurrency(1500000.4); got != "₹15,00,000" {
		t.Errorf("Expected ₹15,00,000, got %q", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00%"},
		{12.3456, "12.35%"},
		{100, "100.00%"},
		{-3.1, "-3.10%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLakhs(t *testing.T) {
	if got := Lakhs(1000000, -1); got != "₹10L" {
		t.Errorf("Expected ₹10L, got %q", got)
	}
	if got := Lakhs(1250000, -1); got != "₹12.5L" {
		t.Errorf("Expected ₹12.5L, got %q", got)
	}
	if got := Lakhs(1234567, 2); got != "₹12.35L" {
		t.Errorf("Expected ₹12.35L, got %q", got)
	}
}

func TestCount(t *testing.T) {
	if got := Count(1234567); got != "12,34,567" {
		t.Errorf("Expected 12,34,567, got %q", got)
	}
	if got := Count(123456789.4); got != "12,34,56,789" {
		t.Errorf("Expected 12,34,56,789, got %q", got)
	}
	if got := Count(42); got != "42" {
		t.Errorf("Expected 42, got %q", got)
	}
}

func TestChartLabels(t *testing.T) {
	tests := []struct {
		name       string
		labels     []string
		periodType string
		want       []string
	}{
		{"monthly", []string{"2025-03", "2024-12"}, "MS", []string{"Mar 2025", "Dec 2024"}},
		{"quarterly passes through", []string{"2025-Q2"}, "QS", []string{"2025-Q2"}},
		{"yearly passes through", []string{"2024", "2025"}, "YS", []string{"2024", "2025"}},
		{"bad monthly passes through", []string{"March"}, "MS", []string{"March"}},
		{"unknown period type", []string{"x"}, "WS", []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChartLabels(tt.labels, tt.periodType)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestChartLabelsLogsUnparseable(t *testing.T) {
	prev := logger.Get()
	defer logger.Set(prev)

	var buf bytes.Buffer
	logger.Set(logger.New(logger.Config{Level: logger.DEBUG, Format: logger.JSONFormat, Output: &buf}))

	ChartLabels([]string{"2025-03"}, "MS")
	if buf.Len() != 0 {
		t.Errorf("Expected no diagnostic for valid labels, got %s", buf.String())
	}

	ChartLabels([]string{"2025/03"}, "MS")
	if !strings.Contains(buf.String(), "unrecognised period labels") {
		t.Errorf("Expected a diagnostic, got %q", buf.String())
	}
}

func TestPeriodName(t *testing.T) {
	want := map[string]string{"MS": "Month", "QS": "Quarter", "YS": "Year", "": "Period"}
	for in, w := range want {
		if got := PeriodName(in); got != w {
			t.Errorf("PeriodName(%q) = %q, want %q", in, got, w)
		}
	}
}

func TestMonthOptions(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	opts := MonthOptions(from, to)
	if len(opts) != 29 {
		t.Fatalf("Expected 29 months, got %d", len(opts))
	}
	if opts[0] != (DateOption{Value: "2025-05-01", Label: "May 2025"}) {
		t.Errorf("Expected May 2025 first, got %+v", opts[0])
	}
	if opts[len(opts)-1] != (DateOption{Value: "2023-01-01", Label: "Jan 2023"}) {
		t.Errorf("Expected Jan 2023 last, got %+v", opts[len(opts)-1])
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Error("Expected error for impossible date")
	}
	d, err := ParseDate("2025-02-28")
	if err != nil || d.Day() != 28 {
		t.Errorf("Expected 28 Feb, got %v (%v)", d, err)
	}
}
