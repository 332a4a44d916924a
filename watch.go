package formbind

import (
	"slices"
)

// ChangeKind tells user-driven updates from program-driven ones.
type ChangeKind int

const (
	ChangeUpdate ChangeKind = iota // UpdateData: the view drives the model.
	ChangeSet                      // SetData: the model drives the view.
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeUpdate:
		return "update"
	case ChangeSet:
		return "set"
	default:
		return "unknown"
	}
}

// ChangeEvent is published once per UpdateData/SetData call.
type ChangeEvent struct {
	Old   any // snapshot before the write
	New   any // snapshot after the write
	Valid bool
	Path  string
	Kind  ChangeKind
	// Origin is the ID of the controller whose element fired the change, or
	// "" for programmatic calls.
	Origin string
}

// Observer receives change events.
type Observer func(ChangeEvent)

type watcher struct {
	fn     Observer
	active bool
}

// Watch subscribes fn to every change. Observers run synchronously in
// subscription order; an observer added during a notification first sees the
// next one. The returned func unsubscribes and may be called from inside an
// observer.
//
// Delivery is depth-first. When an observer writes to the model, the nested
// event reaches every observer before the outer event reaches the observers
// after the writer, so those see the nested event first. Observers that need
// a total order should defer their writes until the notification returns.
func (m *Model) Watch(fn Observer) (unwatch func()) {
	w := &watcher{fn: fn, active: true}
	m.watchers = append(m.watchers, w)
	return func() {
		if !w.active {
			return
		}
		w.active = false
		m.watchers = slices.DeleteFunc(m.watchers, func(x *watcher) bool { return x == w })
	}
}

func (m *Model) publish(ev ChangeEvent) {
	for _, w := range slices.Clone(m.watchers) {
		if w.active {
			w.fn(ev)
		}
	}
}
