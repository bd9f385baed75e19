package sync

import (
	"time"

	"github.com/iudanet/rentkeeper/internal/metrics"
)

// Status is the coarse orchestrator state.
type Status string

// Состояния оркестратора
const (
	StatusIdle    Status = metrics.StateIdle
	StatusSyncing Status = metrics.StateSyncing
	StatusError   Status = metrics.StateError
)

// State is a snapshot published to subscribers.
type State struct {
	Changed  time.Time
	Status   Status
	Message  string // текст ошибки для StatusError
	Failures []DeleteFailure
}

// setState publishes s to every subscriber, replacing any unread older state.
func (o *Orchestrator) setState(s State) {
	s.Changed = o.now()

	o.stateMu.Lock()
	o.state = s
	subs := make([]chan State, len(o.subscribers))
	copy(subs, o.subscribers)
	o.stateMu.Unlock()

	o.metrics.SetState(string(s.Status))

	for _, ch := range subs {
		// Вытесняем непрочитанное состояние: подписчику нужно только последнее
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// Subscribe returns a channel receiving the latest state on every change.
// The channel holds at most one state; slow readers only see the newest.
func (o *Orchestrator) Subscribe() <-chan State {
	ch := make(chan State, 1)
	o.stateMu.Lock()
	o.subscribers = append(o.subscribers, ch)
	ch <- o.state
	o.stateMu.Unlock()
	return ch
}
