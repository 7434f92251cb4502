package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReplacesUserSession(t *testing.T) {
	engine := newTestEngine(t, &fixedQuestions{questions: physicsQuestions(3)}, newFlakyAttempts(0))
	reg := NewRegistry()

	first, err := engine.Start(context.Background(), "user-1", physicsConfig(3))
	require.NoError(t, err)
	reg.Put(first)

	second, err := engine.Start(context.Background(), "user-1", physicsConfig(3))
	require.NoError(t, err)
	reg.Put(second)
	defer second.Abandon()

	assert.Equal(t, StateFailed, first.State())
	assert.Equal(t, MsgAbandoned, first.Failure().Message)
	_, ok := reg.Get(first.ID)
	assert.False(t, ok)

	current, ok := reg.Current("user-1")
	require.True(t, ok)
	assert.Same(t, second, current)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRemove(t *testing.T) {
	engine := newTestEngine(t, &fixedQuestions{questions: physicsQuestions(3)}, newFlakyAttempts(0))
	reg := NewRegistry()

	s, err := engine.Start(context.Background(), "user-1", physicsConfig(3))
	require.NoError(t, err)
	reg.Put(s)

	assert.True(t, reg.Remove(s.ID))
	assert.False(t, reg.Remove(s.ID))
	assert.Equal(t, StateFailed, s.State())
	_, ok := reg.Current("user-1")
	assert.False(t, ok)
}

func TestRegistryActiveCountsInProgressOnly(t *testing.T) {
	engine := newTestEngine(t, &fixedQuestions{questions: physicsQuestions(3)}, newFlakyAttempts(0))
	reg := NewRegistry()

	s, err := engine.Start(context.Background(), "user-1", physicsConfig(3))
	require.NoError(t, err)
	reg.Put(s)
	assert.Equal(t, 1, reg.Active())

	_, err = s.RequestSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 0, reg.Active())
	assert.Equal(t, 1, reg.Len())
}
