package engine

// LimitOperator caps the number of output rows.
type LimitOperator struct {
	input   Operator
	limit   int64
	emitted int64
}

func NewLimitOperator(input Operator, limit int64) *LimitOperator {
	return &LimitOperator{input: input, limit: limit}
}

func (l *LimitOperator) Open() error {
	l.emitted = 0
	return l.input.Open()
}

func (l *LimitOperator) Next() (*Batch, error) {
	if l.emitted >= l.limit {
		return nil, nil
	}

	batch, err := l.input.Next()
	if err != nil || batch == nil {
		return batch, err
	}

	remaining := l.limit - l.emitted
	if int64(batch.NumRows()) > remaining {
		batch = &Batch{Columns: batch.Columns, Types: batch.Types, Rows: batch.Rows[:remaining]}
	}
	l.emitted += int64(batch.NumRows())
	return batch, nil
}

func (l *LimitOperator) Close() error {
	return l.input.Close()
}
