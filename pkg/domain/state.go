package domain

// Step is a read-only view of the unit currently selected in a sequence.
type Step struct {
	// Path holds the ids from just below the root down to the current leaf.
	Path []string `json:"path"`

	// PathString is Path joined with PathSeparator.
	PathString string `json:"path_string"`

	// Data holds the non-empty data found along the current path, outermost first.
	Data []any `json:"data"`

	// Index is the position of the current leaf among its siblings.
	Index int `json:"index"`

	// BlockIndex is the parent's position among its own siblings, -1 at the top level.
	BlockIndex int `json:"block_index"`

	// BlockLength is the number of siblings of the current leaf.
	BlockLength int `json:"block_length"`
}

// IsSentinel reports whether the step points at one of the bookends.
func (s Step) IsSentinel() bool {
	return len(s.Path) == 1 && IsSentinel(s.Path[0])
}

// Merged returns the data along the path merged into one map (last wins).
func (s Step) Merged() map[string]any {
	return Merge(s.Data)
}
