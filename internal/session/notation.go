package session

import (
	"strings"

	"github.com/park285/chess-mcp/internal/rules"
)

type Notation string

const (
	NotationUCI Notation = "uci"
	NotationSAN Notation = "san"
)

// ParseResult is either a parsed move (Move non-nil) or a failure listing
// the notations that were attempted.
type ParseResult struct {
	Move     rules.Move
	Notation Notation
	Tried    []Notation
}

func (r ParseResult) OK() bool { return r.Move != nil }

type attempt struct {
	notation  Notation
	normalize func(string) string
	parse     func(text string, pos rules.Position) (rules.Move, bool)
}

// attempts lists the notations in priority order.
func attempts(engine rules.Engine) []attempt {
	return []attempt{
		{notation: NotationUCI, normalize: strings.ToLower, parse: engine.ParseUCI},
		{notation: NotationSAN, normalize: func(s string) string { return s }, parse: engine.ParseSAN},
	}
}

// Resolve tries each notation in order against pos and stops at the first
// legal move.
func Resolve(engine rules.Engine, pos rules.Position, text string) ParseResult {
	var res ParseResult
	for _, a := range attempts(engine) {
		res.Tried = append(res.Tried, a.notation)
		if mv, ok := a.parse(a.normalize(text), pos); ok {
			res.Move = mv
			res.Notation = a.notation
			return res
		}
	}
	return res
}
