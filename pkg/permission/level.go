package permission

import "fmt"

//go:generate go run github.com/dmarkham/enumer -type Level -trimprefix Level -json -text -yaml -output level.gen.go

// Level is a permission level. Levels are ordered: each level implies the
// ones below it.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	LevelWrite
	LevelDelete
)

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	l, err := LevelString(s)
	if err != nil {
		return LevelNone, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// Allows reports whether l grants at least the requested level.
func (l Level) Allows(requested Level) bool {
	return l >= requested
}

func (l Level) CanRead() bool   { return l >= LevelRead }
func (l Level) CanWrite() bool  { return l >= LevelWrite }
func (l Level) CanDelete() bool { return l >= LevelDelete }
