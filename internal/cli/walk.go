package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/stepper"
	"github.com/aretw0/stepper/internal/presentation/tui"
	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/sequencer"
)

// WalkOptions configures RunWalk.
type WalkOptions struct {
	Name     string
	Design   string // applied before walking when set
	Headless bool
	Fresh    bool
	Plain    bool // no banner, no markdown rendering
}

// RunWalk walks a stored sequence on the terminal until it ends or a signal arrives.
func RunWalk(app *App, opts WalkOptions, in io.Reader, out io.Writer) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err := walk(sigCtx, app, opts, in, out)
	if sig := sigCtx.Signal(); sig != nil && !opts.Headless {
		fmt.Fprintln(out)
		printSystemMessage(out, "Interrupted by %v.", sig)
	}
	return handleExecutionError(err)
}

func walk(ctx context.Context, app *App, opts WalkOptions, in io.Reader, out io.Writer) error {
	if opts.Fresh {
		if err := app.Engine.Delete(ctx, opts.Name); err != nil {
			return fmt.Errorf("failed to reset %q: %w", opts.Name, err)
		}
		app.Logger.Info("Sequence reset", "sequence", opts.Name)
	}
	if opts.Design != "" {
		if err := applyDesign(ctx, app, opts.Name, opts.Design, out); err != nil {
			return err
		}
	}

	fancy := !opts.Headless && !opts.Plain
	if fancy {
		tui.PrintBanner(out)
	}
	r := stepper.NewRunner(NewInterruptibleReader(in, ctx.Done()), out)
	r.Headless = opts.Headless
	if fancy {
		render, err := tui.NewRenderer("")
		if err != nil {
			app.Logger.Warn("Markdown rendering disabled", "error", err)
		} else {
			r.Renderer = render
		}
	}

	runErr := r.Run(ctx, app.Engine, opts.Name)
	if !opts.Headless {
		// the walk context may be cancelled already
		if view, err := app.Engine.Current(context.WithoutCancel(ctx), opts.Name); err == nil {
			printSystemMessage(out, "Stopped at '%s'.", view.PathString)
		}
	}
	return runErr
}

// applyDesign loads the design at path and commits its tables to the named sequence.
func applyDesign(ctx context.Context, app *App, name, path string, out io.Writer) error {
	d, err := design.Load(path)
	if err != nil {
		return err
	}
	results, err := app.Engine.Apply(ctx, name, d)
	if err != nil {
		return err
	}
	committed, skipped := countResults(results)
	printSystemMessage(out, "Applied %s to '%s': %d committed, %d skipped.", d.Name, name, committed, skipped)
	return nil
}

func countResults(results []sequencer.CommitResult) (committed, skipped int) {
	for _, r := range results {
		if r.Skipped {
			skipped++
		} else {
			committed++
		}
	}
	return committed, skipped
}

// ApplyDesign is the non-interactive form of the design step of RunWalk.
func ApplyDesign(app *App, name, path string, out io.Writer) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	return applyDesign(sigCtx, app, name, path, out)
}
