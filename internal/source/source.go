package source

import (
	"fmt"
	"time"

	"github.com/kiriyama-dx/hcpmix/internal/dates"
	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// Source identifiers.
const (
	Call    = "call"
	Edetail = "edetail"
	Events  = "events"
	Reach   = "reach"
)

// Order is the fixed sequence sources run and concatenate in.
var Order = []string{Call, Edetail, Events, Reach}

// Mapper normalizes one source's raw table into canonical engagements.
// Implementations drop individual rows with unparseable dates or blank
// identifiers (logged, never fatal) and fail the whole source when a
// required column is absent from the table.
type Mapper interface {
	Map(tbl model.Table, cfg FilterConfig) (model.Dataset, error)
}

// MappingError reports a raw table missing a column the source
// contract requires. Source-fatal.
type MappingError struct {
	Source string
	Column string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: required column %q missing from source data", e.Source, e.Column)
}

// RequireColumns returns a MappingError for the first named column the
// table does not carry.
func RequireColumns(src string, tbl model.Table, cols ...string) error {
	for _, c := range cols {
		if !tbl.HasColumn(c) {
			return &MappingError{Source: src, Column: c}
		}
	}
	return nil
}

// NewEngagement builds a canonical record, deriving the year-month label
// from the activity date. YrMo is never taken from raw data.
func NewEngagement(hcp string, date time.Time, id, channel, action string) model.Engagement {
	return model.Engagement{
		HCPID:        hcp,
		ActivityDate: date,
		YrMo:         dates.YearMonth(date),
		ID:           id,
		Channel:      channel,
		Action:       action,
	}
}
