package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jorge-barreto/augmentor/internal/logging"
)

func TestBus_DeliversInOrderBeforePublishReturns(t *testing.T) {
	bus := NewBus(logging.Nop())
	defer bus.Close()

	var mu sync.Mutex
	var got []Kind
	require.NoError(t, bus.Subscribe(context.Background(), func(e Event) {
		mu.Lock()
		got = append(got, e.Kind)
		mu.Unlock()
	}))

	require.NoError(t, bus.Publish(Event{Kind: StageStarted, RunID: "r1", Stage: "planner"}))
	require.NoError(t, bus.Publish(Event{Kind: StageFinished, RunID: "r1", Stage: "planner"}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Kind{StageStarted, StageFinished}, got)
}

func TestBus_EventRoundTripsFields(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ch := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(context.Background(), func(e Event) { ch <- e }))
	require.NoError(t, bus.Publish(Event{Kind: RunPaused, RunID: "r2", Questions: []string{"Which audience?"}}))

	e := <-ch
	assert.Equal(t, "r2", e.RunID)
	assert.Equal(t, []string{"Which audience?"}, e.Questions)
	assert.False(t, e.Time.IsZero())
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()
	assert.NoError(t, bus.Publish(Event{Kind: RunStarted, RunID: "r"}))
}

func TestBus_HandlerPanicDoesNotBlock(t *testing.T) {
	bus := NewBus(logging.Nop())
	defer bus.Close()

	require.NoError(t, bus.Subscribe(context.Background(), func(Event) { panic("bad renderer") }))
	require.NoError(t, bus.Publish(Event{Kind: StageStarted}))
	require.NoError(t, bus.Publish(Event{Kind: StageFinished}))
}

func TestLogTo_WritesEntries(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewBus(nil)
	defer bus.Close()

	require.NoError(t, bus.LogTo(context.Background(), logging.NewWithCore(core)))
	require.NoError(t, bus.Publish(Event{Kind: StageFailed, RunID: "r3", Stage: "researcher", Message: "boom"}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stage failed", entries[0].Message)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}
