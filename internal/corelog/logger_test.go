package corelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.events = append(r.events, e)
}

func TestNoopLoggerDiscardsEvents(t *testing.T) {
	var l NoopLogger
	l.Log(Event{Component: "linkpolicy"})
	// Nothing to assert beyond "did not panic" - NoopLogger has no state.
}

func TestMultiLoggerFansOutToAllSinks(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, b, nil)

	m.Log(Event{Component: "mirror", Category: CategoryTransition})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Equal(t, "mirror", a.events[0].Component)
}

func TestEncodeEventRoundTrips(t *testing.T) {
	e := Event{
		Component: "topology",
		Layer:     LayerGoal,
		Category:  CategoryGoalStart,
		Goal:      &GoalEventData{GoalID: "find-role"},
	}

	data, err := EncodeEvent(e)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
}
