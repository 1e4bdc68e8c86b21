package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestChartErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("update failed: %w", NewChartError("salesTrendChart", ErrNetworkFailure, "", cause))

	if !errors.Is(err, ErrNetworkFailure) {
		t.Error("Expected errors.Is to match ErrNetworkFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to match the cause")
	}
	if errors.Is(err, ErrMalformedPayload) {
		t.Error("Did not expect ErrMalformedPayload")
	}

	var ce *ChartError
	if !errors.As(err, &ce) || ce.ChartID != "salesTrendChart" {
		t.Errorf("Expected ChartError for salesTrendChart, got %v", ce)
	}
}

func TestChartErrorMessage(t *testing.T) {
	err := Malformed("salesRegionChart", "regions and sales differ in length (%d vs %d)", 3, 2)
	want := "salesRegionChart: malformed payload: regions and sales differ in length (3 vs 2)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if UserMessage(err) != "regions and sales differ in length (3 vs 2)" {
		t.Errorf("Unexpected user message %q", UserMessage(err))
	}
	if UserMessage(errors.New("plain")) != "plain" {
		t.Error("Expected plain errors to pass through")
	}
	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil")
	}
}

func TestFlexString(t *testing.T) {
	var orders []PendingOrder
	data := `[{"order_id": 1042, "total_amount": 10}, {"order_id": "SO-7"}]`
	if err := json.Unmarshal([]byte(data), &orders); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if orders[0].OrderID != "1042" || orders[1].OrderID != "SO-7" {
		t.Errorf("Unexpected order ids %q %q", orders[0].OrderID, orders[1].OrderID)
	}
}

func TestHasSelectedDate(t *testing.T) {
	if (FilterParams{}).HasSelectedDate() {
		t.Error("Expected no selection for empty date")
	}
	if (FilterParams{SelectedDate: "all"}).HasSelectedDate() {
		t.Error("Expected no selection for all")
	}
	if !(FilterParams{SelectedDate: "2025-03-01"}).HasSelectedDate() {
		t.Error("Expected a selection")
	}
}
