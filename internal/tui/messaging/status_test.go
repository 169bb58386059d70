package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusManager_SetAndClear(t *testing.T) {
	sm := NewStatusManager()
	assert.False(t, sm.HasMessage())
	assert.Empty(t, sm.RenderMessage())

	sm.SetMessage("Copied file ID", MessageSuccess)
	msg, msgType, ok := sm.GetMessage()
	assert.True(t, ok)
	assert.Equal(t, "Copied file ID", msg)
	assert.Equal(t, MessageSuccess, msgType)
	assert.Contains(t, sm.RenderMessage(), "Copied file ID")

	sm.ClearMessage()
	assert.False(t, sm.HasMessage())
}

func TestStatusManager_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sm := &StatusManagerImpl{now: func() time.Time { return now }}

	assert.False(t, sm.Expired(time.Second))

	sm.SetMessage("Listing failed", MessageError)
	assert.False(t, sm.Expired(3*time.Second))

	now = now.Add(3 * time.Second)
	assert.True(t, sm.Expired(3*time.Second))
}
