package engine

// Operator is a pull-based iterator producing batches of rows.
type Operator interface {
	Open() error
	// Next returns the next batch, or nil when exhausted.
	Next() (*Batch, error)
	Close() error
}
