package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/rng"
)

// BuildDesign builds every table of the design at path and prints it, without
// touching any stored sequence. A non-empty seed overrides the design's seed.
func BuildDesign(path, seed string, logger *slog.Logger, out io.Writer) error {
	d, err := design.Load(path)
	if err != nil {
		return err
	}
	opts := []design.Option{design.WithLogger(logger)}
	if seed != "" {
		opts = append(opts, design.WithSource(rng.New(seed)))
	}
	tables, err := d.NewBuilder(opts...).Tables(d)
	if err != nil {
		return err
	}
	for i, t := range tables {
		name := d.Tables[i].Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Fprintf(out, "# %s (%s)\n", name, t.Hash())
		t.Print(out)
	}
	return nil
}
