// ABOUTME: Tests for the keyed scheduler and owned state holder
// ABOUTME: Drives time with a mock clock and checks for leaked goroutines
package agent

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSchedulerRunsAfterDelay(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mock := clock.NewMock()
	s := NewScheduler(mock)
	var ran atomic.Int32

	s.Schedule("k", time.Second, func() { ran.Add(1) })
	assert.True(t, s.Pending("k"))

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Pending("k"))
	s.Stop()
}

func TestSchedulerReplaceCancelsPrevious(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)
	defer s.Stop()
	var first, second atomic.Int32

	s.Schedule("k", time.Second, func() { first.Add(1) })
	s.Schedule("k", 2*time.Second, func() { second.Add(1) })

	mock.Add(3 * time.Second)
	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, first.Load())
}

func TestSchedulerCancelAndStop(t *testing.T) {
	mock := clock.NewMock()
	s := NewScheduler(mock)
	var ran atomic.Int32

	s.Schedule("a", time.Second, func() { ran.Add(1) })
	assert.True(t, s.Cancel("a"))
	assert.False(t, s.Cancel("a"))

	s.Stop()
	s.Schedule("b", time.Second, func() { ran.Add(1) })
	mock.Add(2 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, ran.Load())
	assert.False(t, s.Pending("b"))
}

func TestStateUpdateAndView(t *testing.T) {
	st := NewState(0)
	for i := 0; i < 10; i++ {
		st.Update(func(n *int) { *n++ })
	}
	var got int
	st.View(func(n int) { got = n })
	assert.Equal(t, 10, got)

	st.Replace(3)
	st.View(func(n int) { got = n })
	assert.Equal(t, 3, got)
}
