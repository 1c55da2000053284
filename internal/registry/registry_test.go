package registry

import (
	"testing"

	"github.com/gogotex/pubsub/backend/broker/internal/collection"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := New()
	schema := collection.Schema{{Name: "name", Rules: []collection.Rule{collection.Type(collection.TypeString)}}}

	c, err := r.NewCollection("Topic", schema)
	require.NoError(t, err)

	got, err := r.Collection("Topic")
	require.NoError(t, err)
	require.Same(t, c, got)

	_, err = r.Collection("Queue")
	require.ErrorIs(t, err, ErrNotRegistered)

	_, err = r.NewCollection("Topic", schema)
	require.ErrorIs(t, err, ErrDuplicate)

	other, err := collection.New("Audit", schema)
	require.NoError(t, err)
	require.NoError(t, r.Register(other))
	require.Equal(t, []string{"Audit", "Topic"}, r.Names())
}

func TestRegistryRejectsInvalidSchema(t *testing.T) {
	r := New()
	_, err := r.NewCollection("Bad", collection.Schema{{Name: "x", Rules: []collection.Rule{collection.Type("blob")}}})
	require.Error(t, err)
	require.Empty(t, r.Names())
}
