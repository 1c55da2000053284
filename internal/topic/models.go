package topic

import (
	"time"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
)

// CollectionName is the registry name of the topic collection.
const CollectionName = "Topic"

// Subscription is a registered delivery target of a topic.
type Subscription struct {
	URL   string `json:"url"`
	Topic string `json:"topic"`
}

// Event is one message published to a topic. It is also the body delivered to
// subscribers.
type Event struct {
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

// Topic is a named channel with its subscriptions and event history. It is
// bound to the collection it was loaded from so its behavior can persist.
type Topic struct {
	ID            string         `json:"_id"`
	Name          string         `json:"name"`
	Subscriptions []Subscription `json:"subscriptions"`
	Events        []Event        `json:"events"`
	CreatedAt     time.Time      `json:"timestamp"`

	col *collection.Collection
}

// Behavior is the set of operations bound to every topic.
type Behavior interface {
	Subscribe(sub Subscription) (*Topic, error)
	AddEvent(ev Event) (*Topic, error)
	SubscriberURLs() []string
}

var _ Behavior = (*Topic)(nil)

// Schema declares the topic attributes. Rule order matters: name is trimmed
// after the required check, so a padded name is accepted and stored trimmed.
var Schema = collection.Schema{
	{Name: "name", Rules: []collection.Rule{
		collection.Type(collection.TypeString),
		collection.Required(),
		collection.Trim(),
	}},
	{Name: "subscriptions", Rules: []collection.Rule{
		collection.Type(collection.TypeArray),
		collection.Default([]Subscription{}),
	}},
	{Name: "events", Rules: []collection.Rule{
		collection.Type(collection.TypeArray),
		collection.Default([]Event{}),
	}},
}
