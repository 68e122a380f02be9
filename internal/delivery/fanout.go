package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/logger"
)

// ErrNoSinks indicates a fanout without destinations.
var ErrNoSinks = errors.New("no delivery sinks configured")

// Sink is a named delivery destination.
type Sink interface {
	core.Deliverer
	Name() string
}

// Fanout delivers to every sink in order. A delivery succeeds when at least one sink
// accepted it; the failures of the others are logged.
type Fanout struct {
	sinks []Sink
	log   *logger.Logger
}

// NewFanout creates a fanout over sinks.
func NewFanout(log *logger.Logger, sinks ...Sink) (*Fanout, error) {
	if len(sinks) == 0 {
		return nil, ErrNoSinks
	}

	return &Fanout{sinks: sinks, log: log}, nil
}

// Names lists the sinks in delivery order.
func (f *Fanout) Names() []string {
	names := make([]string, len(f.sinks))
	for i, sink := range f.sinks {
		names[i] = sink.Name()
	}

	return names
}

// SendText implements core.Deliverer.
func (f *Fanout) SendText(ctx context.Context, text string) error {
	return f.each(func(sink Sink) error { return sink.SendText(ctx, text) })
}

// SendAudio implements core.Deliverer.
func (f *Fanout) SendAudio(ctx context.Context, bulletin core.Bulletin) error {
	return f.each(func(sink Sink) error { return sink.SendAudio(ctx, bulletin) })
}

func (f *Fanout) each(deliver func(Sink) error) error {
	var errs []error

	for _, sink := range f.sinks {
		err := deliver(sink)
		if err != nil {
			f.log.Warn("Delivery to %s failed: %v", sink.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}

	if len(errs) == len(f.sinks) {
		return errors.Join(errs...)
	}

	return nil
}
