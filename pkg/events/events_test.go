package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/trainflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_GetType(t *testing.T) {
	assert.Equal(t, WorkflowSavedEvent, WorkflowSaved{}.GetType())
	assert.Equal(t, WorkflowDeletedEvent, WorkflowDeleted{}.GetType())
	assert.Equal(t, WorkflowStatusChangedEvent, WorkflowStatusChanged{}.GetType())
	assert.Equal(t, WorkflowAppliedEvent, WorkflowApplied{}.GetType())
}

func TestEvents_GetWorkflowID(t *testing.T) {
	event := &WorkflowStatusChanged{BaseEvent: NewBaseEvent(WorkflowStatusChangedEvent, "wf-3")}

	assert.Equal(t, "wf-3", event.GetWorkflowID())
}

func TestNewEvent(t *testing.T) {
	for _, eventType := range []EventType{
		WorkflowSavedEvent,
		WorkflowDeletedEvent,
		WorkflowStatusChangedEvent,
		WorkflowAppliedEvent,
	} {
		event, ok := NewEvent(eventType)
		require.True(t, ok, eventType)

		typed, ok := event.(interface{ GetType() EventType })
		require.True(t, ok)
		assert.Equal(t, eventType, typed.GetType())
	}

	_, ok := NewEvent("workflow.triggered")
	assert.False(t, ok)
}

func TestWorkflowApplied_JSON(t *testing.T) {
	original := &WorkflowApplied{
		BaseEvent:  NewBaseEvent(WorkflowAppliedEvent, "wf-1"),
		InstanceID: "inst-1",
		EntityType: "training_requests",
		EntityID:   "42",
	}

	payload, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"workflow.applied"`)
	assert.Contains(t, string(payload), `"workflow_id":"wf-1"`)
	assert.Contains(t, string(payload), `"entity_type":"training_requests"`)

	var decoded WorkflowApplied

	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.InstanceID, decoded.InstanceID)
	assert.Equal(t, original.EntityID, decoded.EntityID)
}

func TestWorkflowStatusChanged_JSON(t *testing.T) {
	payload, err := json.Marshal(&WorkflowStatusChanged{
		BaseEvent:      NewBaseEvent(WorkflowStatusChangedEvent, "wf-1"),
		PreviousStatus: models.WorkflowStatusDraft,
		Status:         models.WorkflowStatusActive,
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"previous_status":"draft"`)
	assert.Contains(t, string(payload), `"status":"active"`)
}
