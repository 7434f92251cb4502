package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerFiresExactlyOnce(t *testing.T) {
	var fired atomic.Int32
	timer := StartTimer(3, time.Millisecond, func() { fired.Add(1) })

	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("timer did not finish")
	}
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimerStopPreventsExpiry(t *testing.T) {
	var fired atomic.Int32
	timer := StartTimer(1000, time.Millisecond, func() { fired.Add(1) })
	time.Sleep(5 * time.Millisecond)
	timer.Stop()
	timer.Stop()

	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("timer goroutine did not exit")
	}
	remaining := timer.Remaining()
	require.Greater(t, remaining, 0)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, remaining, timer.Remaining())
	assert.Zero(t, fired.Load())
}

func TestTimerStopFromExpiryCallback(t *testing.T) {
	handoff := make(chan *Timer, 1)
	done := make(chan struct{})
	timer := StartTimer(1, time.Millisecond, func() {
		(<-handoff).Stop()
		close(done)
	})
	handoff <- timer

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expiry callback not called")
	}
	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("timer goroutine did not exit")
	}
}
