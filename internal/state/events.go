package state

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	ProjectCreated   EventKind = "project.created"
	ProjectUpdated   EventKind = "project.updated"
	ProjectDeleted   EventKind = "project.deleted"
	TodoCreated      EventKind = "todo.created"
	TodoUpdated      EventKind = "todo.updated"
	TodoDeleted      EventKind = "todo.deleted"
	TodoMoved        EventKind = "todo.moved"
	SelectionChanged EventKind = "selection.changed"
)

// Event is delivered to subscribers after a mutation succeeds. ID is the
// affected project or todo; it is empty when the selection moves to all
// projects.
type Event struct {
	Kind EventKind
	ID   string
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn to run synchronously after every successful
// mutation. The returned function removes the subscription.
func (s *AppState) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *AppState) emit(kind EventKind, id string) {
	for _, sub := range s.subs {
		sub.fn(Event{Kind: kind, ID: id})
	}
}
