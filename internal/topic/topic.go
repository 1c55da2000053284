package topic

import (
	"fmt"
	"slices"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
)

// NewCollection builds an unregistered topic collection.
func NewCollection(opts ...collection.Option) (*collection.Collection, error) {
	return collection.New(CollectionName, Schema, opts...)
}

// Create stores a new topic with no subscriptions and no events.
func Create(col *collection.Collection, name string) (*Topic, error) {
	doc, err := col.CreateOne(collection.Attributes{"name": name})
	if err != nil {
		return nil, err
	}
	return fromDocument(col, doc)
}

// GetByName returns the first topic with the given name, or collection.ErrNotFound.
func GetByName(col *collection.Collection, name string) (*Topic, error) {
	doc, err := col.GetByName(name)
	if err != nil {
		return nil, err
	}
	return fromDocument(col, doc)
}

// GetOne returns the topic with the given id, or collection.ErrNotFound.
func GetOne(col *collection.Collection, id string) (*Topic, error) {
	doc, err := col.GetOne(id)
	if err != nil {
		return nil, err
	}
	return fromDocument(col, doc)
}

// List returns every topic in creation order.
func List(col *collection.Collection) ([]*Topic, error) {
	docs := col.All()
	out := make([]*Topic, 0, len(docs))
	for _, d := range docs {
		t, err := fromDocument(col, d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Subscribe appends sub and persists the whole topic. The receiver reflects the
// stored state on success and is left untouched on failure.
func (t *Topic) Subscribe(sub Subscription) (*Topic, error) {
	data := t.attributes()
	data["subscriptions"] = append(slices.Clone(t.Subscriptions), sub)
	return t.save(data)
}

// AddEvent appends ev to the event history and persists the whole topic.
func (t *Topic) AddEvent(ev Event) (*Topic, error) {
	data := t.attributes()
	data["events"] = append(slices.Clone(t.Events), ev)
	return t.save(data)
}

// SubscriberURLs returns the url of every subscription, in subscription order.
// The slice is a snapshot; later subscriptions do not appear in it.
func (t *Topic) SubscriberURLs() []string {
	urls := make([]string, 0, len(t.Subscriptions))
	for _, s := range t.Subscriptions {
		urls = append(urls, s.URL)
	}
	return urls
}

func (t *Topic) attributes() collection.Attributes {
	return collection.Attributes{
		"name":          t.Name,
		"subscriptions": t.Subscriptions,
		"events":        t.Events,
	}
}

func (t *Topic) save(data collection.Attributes) (*Topic, error) {
	if t.col == nil {
		return nil, fmt.Errorf("topic %s: not bound to a collection", t.ID)
	}
	doc, err := t.col.UpdateOne(t.ID, data)
	if err != nil {
		return nil, err
	}
	saved, err := fromDocument(t.col, doc)
	if err != nil {
		return nil, err
	}
	*t = *saved
	return t, nil
}

func fromDocument(col *collection.Collection, doc *collection.Document) (*Topic, error) {
	subs, ok := doc.Get("subscriptions").([]Subscription)
	if !ok {
		return nil, fmt.Errorf("topic %s: unexpected subscriptions type %T", doc.ID, doc.Get("subscriptions"))
	}
	events, ok := doc.Get("events").([]Event)
	if !ok {
		return nil, fmt.Errorf("topic %s: unexpected events type %T", doc.ID, doc.Get("events"))
	}
	return &Topic{
		ID:            doc.ID,
		Name:          doc.String("name"),
		Subscriptions: slices.Clone(subs),
		Events:        slices.Clone(events),
		CreatedAt:     doc.CreatedAt,
		col:           col,
	}, nil
}
