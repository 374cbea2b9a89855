package provisioning

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives the printf lines and structured events of a run.
type Observer interface {
	Logger
	Event(event Event)
	Progress(phase string, current, total int)
	// WithFields returns an Observer that adds fields to every event.
	WithFields(fields map[string]string) Observer
}

// Event is one structured provisioning event. Resource is the resource name
// when the event concerns one.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies events as "<subject>.<verb>".
type EventType string

// Phase lifecycle.
const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"
	EventPhaseSkipped   EventType = "phase.skipped"
)

// Remote resources. Waiting is emitted once per poll of a resource that
// exists but is not usable yet.
const (
	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceFailed   EventType = "resource.failed"
	EventResourceWaiting  EventType = "resource.waiting"
)

const (
	EventValidationWarning EventType = "validation.warning"
	EventValidationError   EventType = "validation.error"
	EventProgress          EventType = "progress"
)

// failing events are logged at error level.
var failing = map[EventType]bool{
	EventPhaseFailed:     true,
	EventResourceFailed:  true,
	EventValidationError: true,
}

// ConsoleObserver implements Observer on top of a logr.Logger.
type ConsoleObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates an observer writing to log.
func NewConsoleObserver(log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...), fieldsToKV(o.contextFields)...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, fieldsToKV(event.Fields)...)

	if failing[event.Type] {
		o.log.Error(nil, event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	kv := []any{"phase", phase, "current", current, "total", total}
	if total > 0 {
		kv = append(kv, "percent", (current*100)/total)
	}
	o.log.V(1).Info("progress", kv...)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	maps.Copy(merged, o.contextFields)
	maps.Copy(merged, fields)
	return &ConsoleObserver{log: o.log, contextFields: merged}
}

// fieldsToKV flattens fields into sorted logr key/value pairs.
func fieldsToKV(fields map[string]string) []any {
	kv := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return kv
}

func phaseEvent(observer Observer, typ EventType, phase, message string) {
	observer.Event(Event{Type: typ, Phase: phase, Message: message})
}

// resourceEvent emits an event about resourceName; extra holds additional
// key/value field pairs.
func resourceEvent(observer Observer, typ EventType, phase, resourceType, resourceName, message string, extra ...string) {
	fields := map[string]string{"type": resourceType}
	for i := 0; i+1 < len(extra); i += 2 {
		fields[extra[i]] = extra[i+1]
	}
	observer.Event(Event{
		Type:     typ,
		Phase:    phase,
		Resource: resourceName,
		Message:  message,
		Fields:   fields,
	})
}

func LogPhaseStart(observer Observer, phase string) {
	phaseEvent(observer, EventPhaseStarted, phase, "starting")
}

func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	phaseEvent(observer, EventPhaseCompleted, phase, fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)))
}

func LogPhaseFailed(observer Observer, phase string, err error) {
	phaseEvent(observer, EventPhaseFailed, phase, fmt.Sprintf("failed: %v", err))
}

// LogPhaseSkipped records that a phase found nothing to do, with the reason.
func LogPhaseSkipped(observer Observer, phase, reason string) {
	phaseEvent(observer, EventPhaseSkipped, phase, "skipped: "+reason)
}

func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	resourceEvent(observer, EventResourceCreating, phase, resourceType, resourceName, "creating "+resourceType)
}

func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	resourceEvent(observer, EventResourceCreated, phase, resourceType, resourceName, resourceType+" created", "id", resourceID)
}

// LogResourceExists records that a resource was found and reused.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	resourceEvent(observer, EventResourceExists, phase, resourceType, resourceName, resourceType+" already exists", "id", resourceID)
}

// LogResourceWaiting records one poll of a resource in state.
func LogResourceWaiting(observer Observer, phase, resourceType, resourceName, state string) {
	resourceEvent(observer, EventResourceWaiting, phase, resourceType, resourceName, "waiting for "+resourceType, "state", state)
}

func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	resourceEvent(observer, EventResourceFailed, phase, resourceType, resourceName, fmt.Sprintf("%s failed: %v", resourceType, err))
}
