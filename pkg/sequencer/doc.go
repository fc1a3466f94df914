// Package sequencer drives a tree of trials one leaf at a time.
//
// A Sequencer is a tree whose top level is bookended by two sentinel nodes,
// domain.StartOfSequence and domain.EndOfSequence, so that "nothing yet" and
// "past the end" are addressable positions. Content is authored directly through
// Blocks (Append, Zip, Outer, Shuffle, ForEach) or committed from a table.Table:
//
//	seq := sequencer.New(sequencer.WithName("stroop"))
//	trials := table.New()
//	_, _ = trials.Outer(table.NewColumns().Set("word", words).Set("color", colors))
//	if _, err := seq.Commit(ctx, trials); err != nil {
//		return err
//	}
//	for !seq.AtEnd() {
//		render(seq.Current())
//		seq.Next(ctx)
//	}
//
// Commits are idempotent: a table whose structural hash was already committed is
// skipped, so re-running authoring code after a reload does not duplicate trials.
package sequencer
