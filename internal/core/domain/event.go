package domain

// EventType represents the kind of committed document mutation.
type EventType int

const (
	// EventCreated indicates a new document was stored.
	EventCreated EventType = iota

	// EventUpdated indicates an existing document was modified.
	EventUpdated

	// EventDeleted indicates a document was removed.
	EventDeleted

	// EventDeactivated indicates a document was switched inactive.
	EventDeactivated
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	case EventDeactivated:
		return "deactivated"
	default:
		return "unknown"
	}
}

// DocumentEvent is delivered to store subscribers after each committed
// mutation. Document is nil for EventDeleted.
type DocumentEvent struct {
	// Type is the kind of mutation.
	Type EventType

	// DocumentID is the affected document.
	DocumentID string

	// Document is the post-mutation state, nil for deletions.
	Document *Document
}
