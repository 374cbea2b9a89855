package provisioning

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{
		events:   make([]Event, 0),
		messages: make([]string, 0),
		fields:   make(map[string]string),
	}
}

func (m *MockObserver) Printf(format string, _ ...any) {
	// Record raw log messages
	m.messages = append(m.messages, format)
}

func (m *MockObserver) Event(event Event) {
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: "progress",
		Fields: map[string]string{
			"current": strconv.Itoa(current),
			"total":   strconv.Itoa(total),
		},
	})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	newObserver := NewMockObserver()
	for k, v := range m.fields {
		newObserver.fields[k] = v
	}
	for k, v := range fields {
		newObserver.fields[k] = v
	}
	return newObserver
}

// captureLogger returns a logr.Logger that appends formatted lines to out.
func captureLogger(out *[]string, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*out = append(*out, strings.TrimSpace(prefix+" "+args))
	}, funcr.Options{Verbosity: verbosity})
}

func TestConsoleObserver_Printf(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 0))

	observer.Printf("test message: %s", "value")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg"="test message: value"`)
}

func TestConsoleObserver_Event(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 0))

	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    "organization",
		Resource: "contoso",
		Message:  "organization created",
		Fields: map[string]string{
			"type": "organization",
			"id":   "12345",
		},
	})

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"event"="resource.created"`)
	assert.Contains(t, lines[0], `"phase"="organization"`)
	assert.Contains(t, lines[0], `"resource"="contoso"`)
	assert.Contains(t, lines[0], `"id"="12345"`)
	// Fields are emitted in sorted key order.
	assert.Less(t, strings.Index(lines[0], `"id"=`), strings.Index(lines[0], `"type"=`))
}

func TestConsoleObserver_EventFailureLogsError(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 0))

	LogPhaseFailed(observer, "pipeline", assert.AnError)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"error"=null`)
	assert.Contains(t, lines[0], "failed: "+assert.AnError.Error())
}

func TestConsoleObserver_Event_NilFieldsAndTimestamp(t *testing.T) {
	observer := NewConsoleObserver(logr.Discard())

	// Should not panic; observer fills Fields and Timestamp
	observer.Event(Event{Type: EventResourceCreated, Phase: "test", Message: "no fields"})
}

func TestConsoleObserver_Progress(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 1))

	observer.Progress("provisioning", 5, 10)
	observer.Progress("provisioning", 0, 0)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"percent"=50`)
	assert.NotContains(t, lines[1], "percent")
}

func TestConsoleObserver_ProgressHiddenAtDefaultVerbosity(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 0))

	observer.Progress("provisioning", 1, 2)

	assert.Empty(t, lines)
}

func TestConsoleObserver_WithFields(t *testing.T) {
	var lines []string
	observer := NewConsoleObserver(captureLogger(&lines, 0))

	child := observer.WithFields(map[string]string{"run": "r1"})
	child.Event(Event{Type: EventPhaseStarted, Message: "starting", Fields: map[string]string{"run": "explicit"}})
	child.Printf("hello")
	observer.Printf("parent")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"run"="explicit"`)
	assert.Contains(t, lines[1], `"run"="r1"`)
	assert.NotContains(t, lines[2], "run")
}

func TestMockObserver_Events(t *testing.T) {
	observer := NewMockObserver()

	LogPhaseStart(observer, "organization")
	LogResourceCreating(observer, "organization", "project", "web")
	LogResourceCreated(observer, "organization", "project", "web", "12345")
	LogPhaseComplete(observer, "organization", 2*time.Second)

	require.Len(t, observer.events, 4)

	assert.Equal(t, EventPhaseStarted, observer.events[0].Type)
	assert.Equal(t, "organization", observer.events[0].Phase)

	assert.Equal(t, EventResourceCreating, observer.events[1].Type)
	assert.Equal(t, "web", observer.events[1].Resource)

	assert.Equal(t, EventResourceCreated, observer.events[2].Type)
	assert.Equal(t, "12345", observer.events[2].Fields["id"])

	assert.Equal(t, EventPhaseCompleted, observer.events[3].Type)
	assert.Equal(t, "completed in 2s", observer.events[3].Message)
}

func TestLogHelpers(t *testing.T) {
	observer := NewMockObserver()

	LogPhaseStart(observer, "phase1")
	LogPhaseComplete(observer, "phase1", time.Second)
	LogPhaseFailed(observer, "phase2", assert.AnError)
	LogPhaseSkipped(observer, "phase3", "nothing to do")
	LogResourceCreating(observer, "connection", "service connection", "svc-1")
	LogResourceCreated(observer, "connection", "service connection", "svc-1", "id-123")
	LogResourceExists(observer, "connection", "service connection", "svc-1", "id-123")
	LogResourceWaiting(observer, "connection", "service connection", "svc-1", "Pending")
	LogResourceFailed(observer, "connection", "service connection", "svc-1", assert.AnError)

	require.Len(t, observer.events, 9)
	assert.Equal(t, "skipped: nothing to do", observer.events[3].Message)
	assert.Equal(t, "Pending", observer.events[7].Fields["state"])
	assert.Equal(t, EventResourceFailed, observer.events[8].Type)
}

func TestObserver_ImplementsLogger(t *testing.T) {
	var observer Observer = NewConsoleObserver(logr.Discard())
	var logger Logger = observer
	assert.NotNil(t, logger)
}
