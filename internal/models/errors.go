package models

import (
	"errors"
	"fmt"
)

// Failure kinds a chart or card update can end with. All of them are
// reported on the widget that triggered the update.
var (
	ErrNetworkFailure   = errors.New("network failure")
	ErrServerReported   = errors.New("server reported error")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingTarget    = errors.New("missing render target")
	ErrStaleResponse    = errors.New("stale response")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrChartNotReady    = errors.New("chart is still loading")
)

// ChartError ties a failure to the widget it belongs to
type ChartError struct {
	ChartID string
	Kind    error
	Message string
	Err     error
}

func (e *ChartError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ChartID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.ChartID, e.Kind, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *ChartError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewChartError builds a ChartError of the given kind
func NewChartError(chartID string, kind error, msg string, cause error) *ChartError {
	return &ChartError{ChartID: chartID, Kind: kind, Message: msg, Err: cause}
}

// Malformed is shorthand for a MalformedPayload error
func Malformed(chartID, format string, args ...interface{}) *ChartError {
	return NewChartError(chartID, ErrMalformedPayload, fmt.Sprintf(format, args...), nil)
}

// UserMessage is the text shown inside a widget's error area
func UserMessage(err error) string {
	var ce *ChartError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
