/*
Package stepper sequences the trials of an experiment.

Trials are authored as tables: ordered rows of data built with generators
(Append, Range, Repeat, Zip, Outer, Interleave), shapers (Partition, ForEach)
and randomizers (Shuffle, Sample). A table is committed to a sequence, a tree
whose leaves are the units presented to a participant, bracketed by the SOS and
EOS sentinels. Committing the same table twice is a no-op, so the code that
authors a sequence can run again after a restart without duplicating trials.

# Packages

  - pkg/table: the table builder DSL.
  - pkg/sequencer: the trial tree, commits, navigation and snapshots.
  - pkg/design: YAML designs that describe tables declaratively.
  - pkg/session and pkg/adapters: persistence of named sequences (memory, file, redis).

# Usage

The Engine keeps named sequences in a state store and persists every change.

	eng := stepper.New(stepper.WithStore(file.New(file.DefaultDir)))

	t := eng.NewTable()
	t.Chain().
		Outer(table.NewColumns().
			Set("color", []any{"red", "green"}).
			Set("word", []any{"RED", "GREEN"})).
		Shuffle("pilot")

	if _, err := eng.Commit(ctx, "p01", t); err != nil {
		log.Fatal(err)
	}
	view, _ := eng.Current(ctx, "p01")
	fmt.Println(view.PathString, view.Merged())

	view, _ = eng.Next(ctx, "p01")

Sequences can also be used directly, without a store, through sequencer.New.
*/
package stepper
