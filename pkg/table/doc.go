// Package table provides the hierarchical row builder used to author trial structures
// before they are committed to a sequencer.
//
// A Table is a node holding optional row data and an ordered list of rows, each of
// which is itself a Table. Mutators validate their arguments, the read-only flag and
// the row safety limit before touching anything, and return the receiver so calls can
// be chained:
//
//	t := table.New()
//	if _, err := t.Outer(table.NewColumns().
//		Set("color", []string{"red", "blue"}).
//		Set("size", []string{"s", "l"})); err != nil {
//		return err
//	}
//	if _, err := t.Shuffle("my-seed"); err != nil {
//		return err
//	}
//
// Chain wraps the same operations and keeps the first error:
//
//	t, err := table.New().Chain().Range(4, "trial").Repeat(2).Shuffle("s").Result()
package table
