package feed

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/park285/chess-mcp/pkg/chessdto"
)

// Publisher delivers game events to an outside consumer.
type Publisher interface {
	Publish(ctx context.Context, ev chessdto.GameEvent) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, chessdto.GameEvent) error { return nil }

// Multi fans an event out to every publisher in order. One failing publisher
// does not stop the rest; the failures are returned together.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev chessdto.GameEvent) error {
	var result *multierror.Error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Combine drops nil publishers and collapses the rest.
func Combine(pubs ...Publisher) Publisher {
	var out Multi
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}
