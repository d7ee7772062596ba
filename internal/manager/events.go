package manager

// Event names published by the manager.
const (
	EventEnsureStart = "ensure_start"
	EventEnsureReady = "ensure_ready"
	EventEnsureError = "ensure_error"
	EventDrainStart  = "drain_start"
	EventDrainDone   = "drain_done"
)

// Event is one step of a model load or of a drain. ModelID is empty for
// manager-wide events; Fields carries extras such as the model path or the
// load duration.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events synchronously from the goroutine that caused
// them, so Publish must return quickly and must not call back into the
// Manager.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
