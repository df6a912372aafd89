package model

import "time"

// Columns is the canonical column order every serialized dataset uses.
var Columns = []string{"HCP_ID", "ACTIVITY_DATE", "YRMO", "ID", "CHANNEL", "ACTION"}

// Engagement is the canonical record all four sources converge on.
type Engagement struct {
	HCPID        string    // healthcare-professional identifier
	ActivityDate time.Time // calendar date, zero clock, UTC
	YrMo         string    // YYYY-MM label, always derived from ActivityDate
	ID           string    // originating activity identifier (call id, service id, ...)
	Channel      string    // source channel label (CALL, LMMR, EDETAIL_*, EMAIL_M3_*, EVENT-like)
	Action       string    // engagement verb (Attended, Delivered, Opened, Clicked, ...)
}

// Record returns the engagement as one serialized row in canonical
// column order.
func (e Engagement) Record() []string {
	return []string{
		e.HCPID,
		e.ActivityDate.Format("2006-01-02"),
		e.YrMo,
		e.ID,
		e.Channel,
		e.Action,
	}
}

// Dataset is one normalized record set, in source order. Consolidated
// datasets keep the fixed source-run order.
type Dataset []Engagement
