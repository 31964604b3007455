package model

import "errors"

var (
	// ErrDataUnavailable means the provider returned no rows or no close prices.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrEmptySeries means no usable row survived cleaning.
	ErrEmptySeries = errors.New("empty series")
	// ErrInsufficientHistory marks a row whose indicators have not warmed up.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrIndicatorComputation marks a non-finite indicator value.
	ErrIndicatorComputation = errors.New("indicator computation")
	ErrUnknownTicker        = errors.New("unknown ticker")
	ErrInvalidConfig        = errors.New("invalid config")
)
