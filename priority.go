package priopool

import "strconv"

// Priority orders pending tasks. Higher values run first. The valid range is
// 0..Options.Levels-1; the three named levels cover the default scale.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

const (
	DefaultLevels = 3
	MaxLevels     = 64
)

// String names the levels of the default three-level scale and prints any
// other value as "pN". On a pool with a different Levels count the names do
// not match the ordering; use Label there.
func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "p" + strconv.Itoa(int(p))
	}
}

// Label names p on a scale of the given number of levels. Only the default
// scale uses the low/medium/high names; every other scale prints "pN".
func (p Priority) Label(levels int) string {
	if levels == DefaultLevels {
		return p.String()
	}
	return "p" + strconv.Itoa(int(p))
}

// defaultPriority is used when a task is submitted without WithPriority.
func defaultPriority(levels int) Priority {
	return Priority(levels / 2)
}

func validPriority(p Priority, levels int) bool {
	return p >= 0 && int(p) < levels
}
