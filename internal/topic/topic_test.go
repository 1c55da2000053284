package topic

import (
	"encoding/json"
	"testing"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
	"github.com/stretchr/testify/require"
)

func newCollection(t *testing.T) *collection.Collection {
	t.Helper()
	col, err := NewCollection()
	require.NoError(t, err)
	return col
}

func TestCreateStartsEmpty(t *testing.T) {
	col := newCollection(t)

	tp, err := Create(col, "news")
	require.NoError(t, err)
	require.NotEmpty(t, tp.ID)
	require.Equal(t, "news", tp.Name)
	require.Empty(t, tp.Subscriptions)
	require.NotNil(t, tp.Subscriptions)
	require.Empty(t, tp.Events)
	require.False(t, tp.CreatedAt.IsZero())
}

func TestCreateRejectsBlankName(t *testing.T) {
	col := newCollection(t)
	_, err := Create(col, "   ")
	var verr *collection.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 0, col.Len())
}

func TestSubscribePreservesOrder(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "orders")
	require.NoError(t, err)

	_, err = tp.Subscribe(Subscription{URL: "http://a", Topic: tp.ID})
	require.NoError(t, err)
	saved, err := tp.Subscribe(Subscription{URL: "http://b", Topic: tp.ID})
	require.NoError(t, err)
	require.Same(t, tp, saved)

	got, err := GetByName(col, "orders")
	require.NoError(t, err)
	require.Equal(t, []string{"http://a", "http://b"}, got.SubscriberURLs())
	require.Equal(t, tp.ID, got.Subscriptions[0].Topic)
}

func TestDuplicateSubscriptionsAreKept(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "dups")
	require.NoError(t, err)

	sub := Subscription{URL: "http://same", Topic: tp.ID}
	_, err = tp.Subscribe(sub)
	require.NoError(t, err)
	_, err = tp.Subscribe(sub)
	require.NoError(t, err)
	require.Equal(t, []string{"http://same", "http://same"}, tp.SubscriberURLs())
}

func TestAddEventAppendsHistory(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "log")
	require.NoError(t, err)

	_, err = tp.AddEvent(Event{Message: "one", Topic: tp.ID})
	require.NoError(t, err)
	_, err = tp.AddEvent(Event{Message: "two", Topic: tp.ID})
	require.NoError(t, err)

	got, err := GetOne(col, tp.ID)
	require.NoError(t, err)
	require.Equal(t, []Event{{Message: "one", Topic: tp.ID}, {Message: "two", Topic: tp.ID}}, got.Events)
	require.Empty(t, got.Subscriptions)
}

func TestSubscriberURLsIsSnapshot(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "snap")
	require.NoError(t, err)
	_, err = tp.Subscribe(Subscription{URL: "http://u1", Topic: tp.ID})
	require.NoError(t, err)

	urls := tp.SubscriberURLs()
	_, err = tp.Subscribe(Subscription{URL: "http://u2", Topic: tp.ID})
	require.NoError(t, err)

	require.Equal(t, []string{"http://u1"}, urls)
	require.Equal(t, []string{"http://u1", "http://u2"}, tp.SubscriberURLs())
}

func TestStaleSnapshotsLoseUpdates(t *testing.T) {
	col := newCollection(t)
	_, err := Create(col, "race")
	require.NoError(t, err)

	// two writers load the topic before either one saves
	first, err := GetByName(col, "race")
	require.NoError(t, err)
	second, err := GetByName(col, "race")
	require.NoError(t, err)

	_, err = first.Subscribe(Subscription{URL: "http://first", Topic: first.ID})
	require.NoError(t, err)
	_, err = second.Subscribe(Subscription{URL: "http://second", Topic: second.ID})
	require.NoError(t, err)

	got, err := GetByName(col, "race")
	require.NoError(t, err)
	require.Equal(t, []string{"http://second"}, got.SubscriberURLs())
}

func TestGetOneIsIdempotent(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "idem")
	require.NoError(t, err)

	a, err := GetOne(col, tp.ID)
	require.NoError(t, err)
	b, err := GetOne(col, tp.ID)
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = GetOne(col, "missing")
	require.ErrorIs(t, err, collection.ErrNotFound)
}

func TestListInCreationOrder(t *testing.T) {
	col := newCollection(t)
	for _, n := range []string{"a", "b", "c"} {
		_, err := Create(col, n)
		require.NoError(t, err)
	}
	list, err := List(col)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "a", list[0].Name)
	require.Equal(t, "c", list[2].Name)
}

func TestUnboundTopicCannotSave(t *testing.T) {
	tp := &Topic{ID: "x", Name: "loose"}
	_, err := tp.Subscribe(Subscription{URL: "http://a"})
	require.Error(t, err)
}

func TestTopicJSON(t *testing.T) {
	col := newCollection(t)
	tp, err := Create(col, "wire")
	require.NoError(t, err)
	_, err = tp.Subscribe(Subscription{URL: "http://a", Topic: tp.ID})
	require.NoError(t, err)

	b, err := json.Marshal(tp)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, tp.ID, got["_id"])
	require.Equal(t, "wire", got["name"])
	require.Len(t, got["subscriptions"], 1)
	require.Equal(t, []any{}, got["events"])
	require.Contains(t, got, "timestamp")
}
