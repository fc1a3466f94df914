package table

// Chain applies table operations in sequence and keeps the first error.
// Once an operation fails, later calls are skipped.
type Chain struct {
	t   *Table
	err error
}

// Chain starts a chain on t.
func (t *Table) Chain() *Chain {
	return &Chain{t: t}
}

func (c *Chain) do(op func() (*Table, error)) *Chain {
	if c.err != nil {
		return c
	}
	_, c.err = op()
	return c
}

// Append runs Table.Append.
func (c *Chain) Append(v any) *Chain {
	return c.do(func() (*Table, error) { return c.t.Append(v) })
}

// Range runs Table.Range.
func (c *Chain) Range(n int, field string) *Chain {
	return c.do(func() (*Table, error) { return c.t.Range(n, field) })
}

// Repeat runs Table.Repeat.
func (c *Chain) Repeat(n int) *Chain {
	return c.do(func() (*Table, error) { return c.t.Repeat(n) })
}

// Zip runs Table.Zip.
func (c *Chain) Zip(cols *Columns, opts ZipOptions) *Chain {
	return c.do(func() (*Table, error) { return c.t.Zip(cols, opts) })
}

// Outer runs Table.Outer.
func (c *Chain) Outer(cols *Columns) *Chain {
	return c.do(func() (*Table, error) { return c.t.Outer(cols) })
}

// Interleave runs Table.Interleave.
func (c *Chain) Interleave(input any) *Chain {
	return c.do(func() (*Table, error) { return c.t.Interleave(input) })
}

// Partition runs Table.Partition.
func (c *Chain) Partition(n int) *Chain {
	return c.do(func() (*Table, error) { return c.t.Partition(n) })
}

// Shuffle runs Table.Shuffle.
func (c *Chain) Shuffle(seed string) *Chain {
	return c.do(func() (*Table, error) { return c.t.Shuffle(seed) })
}

// Sample runs Table.Sample.
func (c *Chain) Sample(opts SampleOptions) *Chain {
	return c.do(func() (*Table, error) { return c.t.Sample(opts) })
}

// ForEach runs Table.ForEach. An error returned by fn stops the chain.
func (c *Chain) ForEach(fn func(i int, row *Table) error) *Chain {
	return c.do(func() (*Table, error) { return c.t.ForEach(fn) })
}

// SetReadOnly locks the table. Operations after it fail with domain.ErrReadOnly.
func (c *Chain) SetReadOnly() *Chain {
	return c.do(c.t.SetReadOnly)
}

// Err returns the first error met by the chain.
func (c *Chain) Err() error { return c.err }

// Table returns the table being built, regardless of errors.
func (c *Chain) Table() *Table { return c.t }

// Result returns the table and the first error.
func (c *Chain) Result() (*Table, error) { return c.t, c.err }
