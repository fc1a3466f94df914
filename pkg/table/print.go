package table

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
)

// Print writes a recursive dump of the rows to w (os.Stdout when nil):
//
//	Table with 2 rows:
//	[0]: {"partition":0}
//	  Nested table with 1 rows:
//	  [0]: {"trial":1}
//	[1]: ...
//
// Function values and keys starting with "_" are left out.
func (t *Table) Print(w io.Writer) *Table {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Table with %d rows:\n", len(t.items))
	printRows(w, t, 0)
	return t
}

func printRows(w io.Writer, t *Table, level int) {
	indent := strings.Repeat("  ", level)
	for i, it := range t.items {
		fmt.Fprintf(w, "%s[%d]: %s\n", indent, i, formatData(it.data))
		if len(it.items) > 0 {
			fmt.Fprintf(w, "%s  Nested table with %d rows:\n", indent, len(it.items))
			printRows(w, it, level+1)
		}
	}
}

func formatData(data any) string {
	if m, ok := data.(map[string]any); ok {
		clean := make(map[string]any, len(m))
		for k, v := range m {
			if !strings.HasPrefix(k, "_") {
				clean[k] = v
			}
		}
		data = clean
	}
	data, ok := domain.Sanitize(data)
	if !ok {
		return "null"
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(raw)
}
