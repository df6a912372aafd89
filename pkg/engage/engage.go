package engage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
	"github.com/kiriyama-dx/hcpmix/internal/source"

	// Register source mappers.
	_ "github.com/kiriyama-dx/hcpmix/internal/source/call"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/edetail"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/events"
	_ "github.com/kiriyama-dx/hcpmix/internal/source/reach"
)

// Normalizer maps raw source exports onto the canonical engagement
// schema. Safe for concurrent use.
type Normalizer struct {
	opts options
}

// New creates a Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.months < 0 {
		return nil, fmt.Errorf("engage: months must not be negative, got %d", o.months)
	}
	return &Normalizer{opts: o}, nil
}

// Sources lists the source names Normalize accepts, sorted.
func Sources() []string {
	return source.Sources()
}

// Normalize maps one source's rows onto the canonical schema. Predicate
// filtering, the source's vocabulary mapping, and the retention window
// all apply; row order follows the source's own rules. Rows shorter
// than columns read as blank fields.
func (n *Normalizer) Normalize(ctx context.Context, src string, columns []string, rows [][]string) ([]Engagement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapper, err := source.Get(src)
	if err != nil {
		return nil, fmt.Errorf("engage: %w", err)
	}

	tbl := model.Table{Columns: columns}
	for _, r := range rows {
		raw := make(model.Raw, len(columns))
		for i, col := range columns {
			if i < len(r) {
				raw[col] = r[i]
			}
		}
		tbl.Rows = append(tbl.Rows, raw)
	}

	reference := n.opts.reference
	if reference.IsZero() {
		reference = time.Now().UTC()
	}
	window := dates.Window{Months: n.opts.months, Reference: reference}

	cfg := source.FilterConfig{
		Predicates: internalPredicates(n.opts.predicates),
		Window:     window,
	}
	mapped, err := mapper.Map(tbl, cfg)
	if err != nil {
		return nil, fmt.Errorf("engage: %w", err)
	}

	out := make([]Engagement, 0, len(mapped))
	for _, e := range mapped {
		if !window.Contains(e.ActivityDate) {
			continue
		}
		out = append(out, Engagement{
			HCPID:        e.HCPID,
			ActivityDate: e.ActivityDate.Format(dates.DayFormat),
			YrMo:         e.YrMo,
			ID:           e.ID,
			Channel:      e.Channel,
			Action:       e.Action,
		})
	}

	n.logger().Debug("normalized source",
		"source", src, "rows_in", len(rows), "rows_out", len(out))
	return out, nil
}

func (n *Normalizer) logger() *slog.Logger {
	if n.opts.logger != nil {
		return n.opts.logger
	}
	return slog.Default()
}

func internalPredicates(preds []Predicate) []source.Predicate {
	if len(preds) == 0 {
		return nil
	}
	out := make([]source.Predicate, len(preds))
	for i, p := range preds {
		out[i] = source.Predicate{Field: p.Field, Value: p.Value}
	}
	return out
}
