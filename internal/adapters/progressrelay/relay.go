// Package progressrelay carries job progress events between processes over
// Redis pub/sub. The worker publishes; every HTTP process subscribes and feeds
// the events into its local progress bus.
package progressrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// DefaultChannel is the pub/sub channel shared by publishers and subscribers.
const DefaultChannel = "enrich:progress"

type wireEvent struct {
	JobID     string         `json:"jobId"`
	Progress  int            `json:"progress"`
	State     model.JobState `json:"state"`
	Timestamp time.Time      `json:"ts"`
}

func encode(ev model.ProgressEvent) ([]byte, error) {
	return json.Marshal(wireEvent{JobID: ev.JobID, Progress: ev.Progress, State: ev.State, Timestamp: ev.Timestamp})
}

func decode(payload string) (model.ProgressEvent, error) {
	var w wireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return model.ProgressEvent{}, fmt.Errorf("decode progress event: %w", err)
	}
	if w.JobID == "" {
		return model.ProgressEvent{}, errors.New("decode progress event: missing job id")
	}
	return model.ProgressEvent{JobID: w.JobID, Progress: w.Progress, State: w.State, Timestamp: w.Timestamp}, nil
}

// Publisher implements core.ProgressPublisher on Redis.
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

// NewPublisher returns a publisher on DefaultChannel.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client, channel: DefaultChannel}
}

// PublishProgress sends ev to every subscribed process.
func (p *Publisher) PublishProgress(ctx context.Context, ev model.ProgressEvent) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish progress: %w", err)
	}
	return nil
}

// SubscriberOptions configures a Subscriber.
type SubscriberOptions struct {
	Client redis.UniversalClient  // Required
	Sink   core.ProgressPublisher // Required; usually the local bus
	Logger *slog.Logger
}

// Subscriber republishes relayed events into a local sink.
type Subscriber struct {
	client    redis.UniversalClient
	sink      core.ProgressPublisher
	channel   string
	logger    *slog.Logger
	ready     chan struct{}
	readyOnce sync.Once
}

// NewSubscriber constructs a subscriber on DefaultChannel.
func NewSubscriber(opts SubscriberOptions) (*Subscriber, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("progress sink is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{
		client:  opts.Client,
		sink:    opts.Sink,
		channel: DefaultChannel,
		logger:  logger.With("component", "progress_relay"),
		ready:   make(chan struct{}),
	}, nil
}

// Ready is closed once the subscription is confirmed by the server.
func (s *Subscriber) Ready() <-chan struct{} { return s.ready }

// Run relays events until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.InfoContext(ctx, "progress relay subscribed", "channel", s.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			ev, err := decode(msg.Payload)
			if err != nil {
				s.logger.WarnContext(ctx, "dropping relayed progress event", "error", err)
				continue
			}
			if err := s.sink.PublishProgress(ctx, ev); err != nil {
				s.logger.WarnContext(ctx, "deliver relayed progress event", "job_id", ev.JobID, "error", err)
			}
		}
	}
}
