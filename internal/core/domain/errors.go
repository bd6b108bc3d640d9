package domain

import "errors"

var (
	ErrStatsUnavailable     = errors.New("stats endpoint unavailable")
	ErrMalformedStats       = errors.New("malformed stats document")
	ErrMalformedStoredValue = errors.New("malformed stored value")
	ErrSlotStore            = errors.New("slot store failure")
)
