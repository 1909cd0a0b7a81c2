package domain

import "errors"

var (
	// ErrBusy is returned when a job is requested while another one holds the run slot.
	ErrBusy = errors.New("a job is already running")
	// ErrSourceDisabled marks a trend source that has no credentials configured.
	ErrSourceDisabled = errors.New("source disabled")
	// ErrAllSourcesFailed is returned when every enabled source failed.
	ErrAllSourcesFailed = errors.New("all trend sources failed")
	// ErrNoContent means the generator answered but nothing usable could be parsed.
	ErrNoContent = errors.New("no usable content")
	// ErrStoreNotFound is returned by gateways for unknown records.
	ErrStoreNotFound = errors.New("record not found")
)
