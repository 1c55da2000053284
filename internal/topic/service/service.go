package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
	"github.com/gogotex/pubsub/backend/broker/internal/dispatch"
	"github.com/gogotex/pubsub/backend/broker/internal/topic"
	"github.com/gogotex/pubsub/backend/broker/pkg/metrics"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidParams = errors.New("invalid params")
	ErrTopicNotFound = errors.New("topic not found")
)

// Service defines the broker operations used by the handler layer.
type Service interface {
	Subscribe(ctx context.Context, topicName, url string) (*topic.Topic, error)
	Publish(ctx context.Context, topicName, message string) error
	Get(ctx context.Context, topicName string) (*topic.Topic, error)
	List(ctx context.Context) ([]*topic.Topic, error)
}

// NewService returns a Service over the given topic collection.
func NewService(col *collection.Collection, d dispatch.Dispatcher, logger zerolog.Logger) Service {
	return &brokerService{topics: col, dispatcher: d, logger: logger}
}

type brokerService struct {
	topics     *collection.Collection
	dispatcher dispatch.Dispatcher
	logger     zerolog.Logger
}

// Subscribe creates the topic when it does not exist yet, then appends a
// subscription for url. A missing url still leaves the new topic in place.
func (s *brokerService) Subscribe(ctx context.Context, topicName, url string) (*topic.Topic, error) {
	name := strings.TrimSpace(topicName)
	t, err := topic.GetByName(s.topics, name)
	if errors.Is(err, collection.ErrNotFound) {
		t, err = topic.Create(s.topics, name)
		if err == nil {
			metrics.TopicsCreated.Inc()
			s.logger.Info().Str("topic", name).Str("topic_id", t.ID).Msg("topic created")
		}
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: Url cannot be empty.", ErrInvalidParams)
	}

	if _, err := t.Subscribe(topic.Subscription{URL: url, Topic: t.ID}); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", name, err)
	}
	metrics.Subscriptions.Inc()
	s.logger.Info().Str("topic", name).Str("url", url).Int("subscribers", len(t.Subscriptions)).Msg("subscription added")
	return t, nil
}

// Publish records message on the topic and hands it to the dispatcher once per
// subscriber registered at this moment. Delivery outcomes are not observed.
func (s *brokerService) Publish(ctx context.Context, topicName, message string) error {
	name := strings.TrimSpace(topicName)
	t, err := topic.GetByName(s.topics, name)
	if errors.Is(err, collection.ErrNotFound) {
		return fmt.Errorf("%w: Topic `%s` does not exist", ErrTopicNotFound, name)
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: Message cannot be empty.", ErrInvalidParams)
	}

	ev := topic.Event{Message: message, Topic: t.ID}
	if _, err := t.AddEvent(ev); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	metrics.EventsPublished.Inc()

	urls := t.SubscriberURLs()
	for _, u := range urls {
		s.dispatcher.Deliver(ctx, u, ev)
	}
	s.logger.Info().Str("topic", name).Int("subscribers", len(urls)).Msg("event published")
	return nil
}

func (s *brokerService) Get(ctx context.Context, topicName string) (*topic.Topic, error) {
	name := strings.TrimSpace(topicName)
	t, err := topic.GetByName(s.topics, name)
	if errors.Is(err, collection.ErrNotFound) {
		return nil, fmt.Errorf("%w: Topic `%s` does not exist", ErrTopicNotFound, name)
	}
	return t, err
}

func (s *brokerService) List(ctx context.Context) ([]*topic.Topic, error) {
	return topic.List(s.topics)
}
