package stepper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// ContentRenderer transforms the markdown of a step before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner walks a stored sequence interactively, one line command at a time:
//
//	(empty), n   next
//	p, b         previous
//	r            reset
//	g <path>     go to path
//	q, quit      stop
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a Runner over the given streams.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run walks the named sequence until the end sentinel, EOF or a quit command.
// The position reached is persisted after every move.
func (r *Runner) Run(ctx context.Context, engine *Engine, name string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	view, err := engine.Current(ctx, name)
	if err != nil {
		return err
	}
	if view.AtStart {
		if view, err = engine.Next(ctx, name); err != nil {
			return err
		}
	}
	if !r.Headless {
		fmt.Fprintf(r.Output, "--- %s ---\n", name)
	}

	for {
		if view.AtEnd {
			fmt.Fprintln(r.Output, "End of sequence.")
			return nil
		}
		if err := r.render(view); err != nil {
			return err
		}

		cmd := ""
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
			text, err := lines.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return fmt.Errorf("input error: %w", err)
				}
				if strings.TrimSpace(text) == "" {
					return nil
				}
			}
			if cmd, err = SanitizeCommand(text); err != nil {
				fmt.Fprintf(r.Output, "error: %v\n", err)
				continue
			}
		}

		next, quit, err := r.dispatch(ctx, engine, name, cmd)
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		if quit {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}
		view = next
	}
}

func (r *Runner) dispatch(ctx context.Context, engine *Engine, name, cmd string) (View, bool, error) {
	verb, arg, _ := strings.Cut(cmd, " ")
	switch verb {
	case "", "n", "next":
		v, err := engine.Next(ctx, name)
		return v, false, err
	case "p", "b", "prev":
		v, err := engine.Prev(ctx, name)
		if err == nil && v.AtStart {
			// the start sentinel has nothing to show
			v, err = engine.Next(ctx, name)
		}
		return v, false, err
	case "r", "reset":
		v, err := engine.Reset(ctx, name)
		return v, false, err
	case "g", "goto":
		v, err := engine.GoTo(ctx, name, strings.TrimSpace(arg))
		return v, false, err
	case "q", "quit", "exit":
		return View{}, true, nil
	}
	return View{}, false, fmt.Errorf("unknown command %q", verb)
}

func (r *Runner) render(v View) error {
	out := FormatStep(v)
	if r.Renderer != nil {
		rendered, err := r.Renderer(out)
		if err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(r.Output, strings.TrimSpace(out))
	return err
}

// FormatStep writes a step as markdown: a heading with its path and position,
// followed by its merged data as a two-column table.
func FormatStep(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", v.PathString)
	fmt.Fprintf(&b, "_item %d of %d_\n", v.Index+1, v.BlockLength)
	merged := v.Merged()
	if len(merged) == 0 {
		return b.String()
	}
	b.WriteString("\n| field | value |\n|---|---|\n")
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, "| %s | %v |\n", k, merged[k])
	}
	return b.String()
}
