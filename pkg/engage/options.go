package engage

import (
	"log/slog"
	"time"
)

const defaultMonths = 7

type options struct {
	months     int
	reference  time.Time
	predicates []Predicate
	logger     *slog.Logger
}

// Option configures a Normalizer.
type Option func(*options)

// WithMonths sets the retention horizon in whole months. Activity older
// than the first of the month, months back from the reference instant,
// is dropped. Default: 7.
func WithMonths(n int) Option {
	return func(o *options) {
		o.months = n
	}
}

// WithReference anchors the retention window on the given instant
// instead of the wall clock. Use this for reproducible runs.
func WithReference(t time.Time) Option {
	return func(o *options) {
		o.reference = t
	}
}

// WithPredicates keeps only raw rows whose fields equal every given
// (field, value) pair. A predicate naming a column the export lacks
// fails the whole Normalize call.
func WithPredicates(preds ...Predicate) Option {
	return func(o *options) {
		o.predicates = append(o.predicates, preds...)
	}
}

// WithLogger routes normalization summaries to the given logger.
// Default: slog's default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		months: defaultMonths,
	}
}
