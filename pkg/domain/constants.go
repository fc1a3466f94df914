package domain

// Reserved identifiers and defaults shared by the sequencing packages.
const (
	// PathSeparator joins node ids into a path string.
	PathSeparator = "/"

	// RootID is the id given to a tree root.
	RootID = "/"

	// StartOfSequence is the sentinel placed before the first unit.
	StartOfSequence = "SOS"

	// EndOfSequence is the sentinel placed after the last unit.
	EndOfSequence = "EOS"

	// DefaultMaxRows is the safety limit used when no limit is configured.
	DefaultMaxRows = 5000
)

// Field constants used to derive node ids from row data.
const (
	// KeyPath names the row field that, when present, becomes the node id.
	KeyPath = "path"

	// KeyPage is accepted as a fallback for KeyPath on commit.
	KeyPage = "page"
)

// IsSentinel reports whether id is one of the reserved bookend ids.
func IsSentinel(id string) bool {
	return id == StartOfSequence || id == EndOfSequence
}
