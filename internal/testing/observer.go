package testing

import (
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/imamik/pipelinekit/internal/provisioning"
)

// RecordingObserver is a provisioning.Observer that keeps every message and
// event. It is safe for concurrent use; observers derived with WithFields
// record into the same log.
type RecordingObserver struct {
	rec    *recording
	fields map[string]string
}

type recording struct {
	mu       sync.Mutex
	events   []provisioning.Event
	messages []string
}

func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{rec: &recording{}, fields: map[string]string{}}
}

func (o *RecordingObserver) Printf(format string, v ...any) {
	o.rec.mu.Lock()
	defer o.rec.mu.Unlock()
	o.rec.messages = append(o.rec.messages, fmt.Sprintf(format, v...))
}

func (o *RecordingObserver) Event(event provisioning.Event) {
	if len(o.fields) > 0 {
		merged := maps.Clone(o.fields)
		maps.Copy(merged, event.Fields)
		event.Fields = merged
	}
	o.rec.mu.Lock()
	defer o.rec.mu.Unlock()
	o.rec.events = append(o.rec.events, event)
}

func (o *RecordingObserver) Progress(phase string, current, total int) {
	o.Event(provisioning.Event{
		Type:  provisioning.EventProgress,
		Phase: phase,
		Fields: map[string]string{
			"current": strconv.Itoa(current),
			"total":   strconv.Itoa(total),
		},
	})
}

func (o *RecordingObserver) WithFields(fields map[string]string) provisioning.Observer {
	merged := maps.Clone(o.fields)
	maps.Copy(merged, fields)
	return &RecordingObserver{rec: o.rec, fields: merged}
}

// Events returns a copy of every recorded event.
func (o *RecordingObserver) Events() []provisioning.Event {
	o.rec.mu.Lock()
	defer o.rec.mu.Unlock()
	return append([]provisioning.Event(nil), o.rec.events...)
}

// Messages returns every formatted Printf message.
func (o *RecordingObserver) Messages() []string {
	o.rec.mu.Lock()
	defer o.rec.mu.Unlock()
	return append([]string(nil), o.rec.messages...)
}

// EventsOfType filters the recorded events.
func (o *RecordingObserver) EventsOfType(t provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range o.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// HasEvent reports whether an event of type t was recorded for resource.
func (o *RecordingObserver) HasEvent(t provisioning.EventType, resource string) bool {
	for _, e := range o.EventsOfType(t) {
		if e.Resource == resource {
			return true
		}
	}
	return false
}
