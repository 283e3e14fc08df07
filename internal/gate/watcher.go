package gate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/keyward/keyward/internal/accesslist"
	"github.com/keyward/keyward/internal/logging"
	"github.com/keyward/keyward/internal/onewire"
	"github.com/keyward/keyward/internal/w1bus"
)

// ErrBusClosed means the bus event channel closed under the watcher.
// The caller is expected to reopen the monitor and run again.
var ErrBusClosed = errors.New("bus event channel closed")

// Decision records the outcome of one token presentation.
type Decision struct {
	// Token is the presented identifier in its textual form.
	Token string `json:"token"`
	// Granted reports whether the token was on the authorized list.
	Granted bool `json:"granted"`
	// At is when the decision was made.
	At time.Time `json:"at"`
}

// Sink receives decisions as they are made. Publish runs on the watch
// loop and must not block.
type Sink interface {
	Publish(Decision)
}

// Watcher answers token presentations from the authorization list.
type Watcher struct {
	list *accesslist.List
	sink Sink
}

// NewWatcher returns a watcher answering from list. A nil sink is
// allowed; decisions are then only logged.
func NewWatcher(list *accesslist.List, sink Sink) *Watcher {
	return &Watcher{list: list, sink: sink}
}

// Run consumes bus events until ctx is cancelled or the channel
// closes. Every "add" event for a decodable device becomes exactly one
// decision; undecodable names are logged and skipped.
func (w *Watcher) Run(ctx context.Context, events <-chan w1bus.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ErrBusClosed
			}
			w.handle(ev)
		}
	}
}

func (w *Watcher) handle(ev w1bus.Event) {
	if ev.Action != w1bus.ActionAdd {
		return
	}
	logging.Debug("Device detected", zap.String("name", ev.Name))

	id, err := onewire.ParseID(ev.Name)
	if err != nil {
		logging.Warn("Failed to decode device name", zap.String("name", ev.Name), zap.Error(err))
		return
	}

	granted := w.list.Contains(id)
	logging.LogDecision(id.String(), granted)
	if w.sink != nil {
		w.sink.Publish(Decision{Token: id.String(), Granted: granted, At: time.Now()})
	}
}
