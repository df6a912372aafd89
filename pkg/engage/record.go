package engage

// Engagement is one canonical engagement record. Dates are formatted
// strings, ready for serialization.
type Engagement struct {
	HCPID        string // stable practitioner identifier
	ActivityDate string // day of the activity, YYYY-MM-DD
	YrMo         string // month of the activity, YYYY-MM
	ID           string // per-source activity identifier
	Channel      string // canonical channel label
	Action       string // canonical action verb
}

// Predicate keeps only raw rows whose named field equals the given value.
type Predicate struct {
	Field string
	Value string
}
