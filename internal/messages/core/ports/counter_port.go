package ports

// CounterIncrement is the per-message counter update handed to the counter
// actor endpoint.
type CounterIncrement struct {
	ChatID   int64
	UserID   int64
	Username string
	Day      string
	Words    []string
}

type CounterPort interface {
	// TryIncrement must not block message ingestion. A false return means the
	// increment was dropped; the aggregation fallback path compensates.
	TryIncrement(inc CounterIncrement) bool
}
