// Package events carries pipeline progress notifications on an in-process
// watermill bus. The runner publishes; the console renderer and the run
// log subscribe.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/jorge-barreto/augmentor/internal/logging"
)

// Topic is the single topic pipeline events are published on.
const Topic = "pipeline.events"

type Kind string

const (
	RunStarted    Kind = "run.started"
	StageStarted  Kind = "stage.started"
	StageFinished Kind = "stage.finished"
	StageFailed   Kind = "stage.failed"
	RunPaused     Kind = "run.paused"
	RunResumed    Kind = "run.resumed"
	RunFinished   Kind = "run.finished"
)

type Event struct {
	Kind      Kind          `json:"kind"`
	RunID     string        `json:"run_id"`
	Stage     string        `json:"stage,omitempty"`
	Index     int           `json:"index,omitempty"`
	Total     int           `json:"total,omitempty"`
	Pass      int           `json:"pass,omitempty"`
	Model     string        `json:"model,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Message   string        `json:"message,omitempty"`
	Questions []string      `json:"questions,omitempty"`
	Time      time.Time     `json:"time"`
}

// Publisher is what the runner needs from the bus.
type Publisher interface {
	Publish(e Event) error
}

// Bus is a synchronous in-memory pub/sub: Publish returns once every
// subscriber has handled the event, so console output keeps stage order.
type Bus struct {
	pubSub *gochannel.GoChannel
	log    logging.Logger
}

func NewBus(log logging.Logger) *Bus {
	if log == nil {
		log = logging.Nop()
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{BlockPublishUntilSubscriberAck: true},
			watermill.NewStdLogger(false, false),
		),
		log: log,
	}
}

func (b *Bus) Publish(e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return b.pubSub.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe delivers every event to handler until ctx is cancelled or the
// bus is closed. Handler panics are logged and the event is still acked.
func (b *Bus) Subscribe(ctx context.Context, handler func(Event)) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			b.process(msg, handler)
		}
	}()
	return nil
}

func (b *Bus) process(msg *message.Message, handler func(Event)) {
	defer msg.Ack()
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		b.log.Warn("events", "dropping malformed event", map[string]interface{}{"error": err.Error()})
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("events", "subscriber panicked", map[string]interface{}{
				"kind":  string(e.Kind),
				"panic": fmt.Sprint(r),
			})
		}
	}()
	handler(e)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// LogTo subscribes a handler that writes every event to the run log.
func (b *Bus) LogTo(ctx context.Context, log logging.Logger) error {
	return b.Subscribe(ctx, func(e Event) {
		details := map[string]interface{}{
			"run_id": e.RunID,
			"kind":   string(e.Kind),
		}
		if e.Stage != "" {
			details["stage"] = e.Stage
		}
		if e.Pass > 0 {
			details["pass"] = e.Pass
		}
		if e.Duration > 0 {
			details["duration_ms"] = e.Duration.Milliseconds()
		}
		if e.Message != "" {
			details["message"] = e.Message
		}
		if e.Kind == StageFailed {
			log.Error("pipeline", "stage failed", details)
			return
		}
		log.Info("pipeline", string(e.Kind), details)
	})
}
