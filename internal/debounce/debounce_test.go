package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	vals []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals = append(r.vals, v)
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.vals...)
}

func TestRapidPushesCollapseToLast(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.record)

	for _, v := range []string{"h", "he", "hel", "hell", "hello"} {
		d.Push(v)
	}

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	// No second flush arrives for the collapsed values.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"hello"}, rec.values())
	assert.False(t, d.Pending())
}

func TestPushRestartsTimer(t *testing.T) {
	rec := &recorder{}
	d := New(80*time.Millisecond, rec.record)

	d.Push("a")
	time.Sleep(40 * time.Millisecond)
	d.Push("b")
	time.Sleep(50 * time.Millisecond)
	// 90ms since the first push but only 50ms since the last.
	assert.Empty(t, rec.values())

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b"}, rec.values())
}

func TestSeparatedPushesFlushIndividually(t *testing.T) {
	rec := &recorder{}
	d := New(10*time.Millisecond, rec.record)

	d.Push("one")
	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 2*time.Millisecond)
	d.Push("two")
	require.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 2*time.Millisecond)

	assert.Equal(t, []string{"one", "two"}, rec.values())
}

func TestFlushDeliversImmediately(t *testing.T) {
	rec := &recorder{}
	d := New(time.Hour, rec.record)

	d.Flush()
	assert.Empty(t, rec.values())

	d.Push("now")
	assert.True(t, d.Pending())
	d.Flush()
	assert.Equal(t, []string{"now"}, rec.values())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Equal(t, []string{"now"}, rec.values())
}

func TestStopDropsPending(t *testing.T) {
	rec := &recorder{}
	d := New(10*time.Millisecond, rec.record)

	d.Push("dropped")
	d.Stop()
	d.Push("ignored")
	d.Flush()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, rec.values())
	assert.False(t, d.Pending())
}

func TestDeliveriesDoNotOverlap(t *testing.T) {
	rec := &recorder{}
	entered := make(chan struct{})
	release := make(chan struct{})
	d := New(10*time.Millisecond, func(v string) {
		if v == "old" {
			close(entered)
			<-release
		}
		rec.record(v)
	})

	d.Push("old")
	go d.Flush()
	<-entered

	// The timer for this push expires while "old" is still being delivered.
	d.Push("new")
	time.Sleep(50 * time.Millisecond)
	assert.True(t, d.Pending())
	assert.Empty(t, rec.values())

	close(release)
	require.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"old", "new"}, rec.values())
	assert.Eventually(t, func() bool { return !d.Pending() }, time.Second, 5*time.Millisecond)
}
