package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Document is a stored record. ID and CreatedAt are assigned on creation and
// never change.
type Document struct {
	ID         string
	CreatedAt  time.Time
	Attributes Attributes
}

// Get returns the raw value of an attribute.
func (d Document) Get(name string) any {
	return d.Attributes[name]
}

// String returns a string attribute, or "" when it is absent or not a string.
func (d Document) String(name string) string {
	s, _ := d.Attributes[name].(string)
	return s
}

// clone copies the document down to nested slices and maps.
func (d Document) clone() Document {
	if d.Attributes == nil {
		return d
	}
	attrs := make(Attributes, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = cloneValue(v)
	}
	d.Attributes = attrs
	return d
}

// MarshalJSON flattens attributes next to "_id" and "timestamp".
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Attributes)+2)
	for k, v := range d.Attributes {
		out[k] = v
	}
	out["_id"] = d.ID
	out["timestamp"] = d.CreatedAt
	return json.Marshal(out)
}

// Option configures a Collection.
type Option func(*Collection)

// WithIDGenerator replaces the default UUID v4 generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collection) { c.newID = fn }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(fn func() time.Time) Option {
	return func(c *Collection) { c.now = fn }
}

// Collection is a named, schema-validated, in-memory document store. Documents
// keep their insertion order. Every create and every document replacement is
// atomic; sequences of calls are not.
type Collection struct {
	name   string
	schema Schema

	mu   sync.RWMutex
	docs []Document

	newID func() string
	now   func() time.Time
}

// New validates the schema and returns an empty collection.
func New(name string, schema Schema, opts ...Option) (*Collection, error) {
	if name == "" {
		return nil, errors.New("collection name is empty")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, err)
	}
	c := &Collection{
		name:   name,
		schema: schema,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name is the registry name of the collection.
func (c *Collection) Name() string { return c.name }

// Schema returns the attribute declarations the collection validates against.
func (c *Collection) Schema() Schema { return c.schema }

// CreateOne validates data against every schema attribute and appends the
// resulting document. Keys not declared in the schema are ignored.
func (c *Collection) CreateOne(data Attributes) (*Document, error) {
	attrs, err := c.resolve(data)
	if err != nil {
		return nil, err
	}
	doc := Document{ID: c.newID(), CreatedAt: c.now(), Attributes: attrs}

	c.mu.Lock()
	c.docs = append(c.docs, doc)
	c.mu.Unlock()

	out := doc.clone()
	return &out, nil
}

// GetOne returns the first document with the given id.
func (c *Collection) GetOne(id string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if d.ID == id {
			out := d.clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// GetByName returns the first document whose "name" attribute equals name.
func (c *Collection) GetByName(name string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		if n, ok := d.Attributes["name"].(string); ok && n == name {
			out := d.clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// All returns every document in insertion order.
func (c *Collection) All() []*Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Document, 0, len(c.docs))
	for _, d := range c.docs {
		cp := d.clone()
		out = append(out, &cp)
	}
	return out
}

// Len reports the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// UpdateOne revalidates every attribute of the document from data and replaces
// it in place. Attributes missing from data fall back to their default or fail
// "required", so callers pass the full attribute set.
func (c *Collection) UpdateOne(id string, data Attributes) (*Document, error) {
	if _, err := c.GetOne(id); err != nil {
		return nil, err
	}
	attrs, err := c.resolve(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if d.ID == id {
			d.Attributes = attrs
			c.docs[i] = d
			out := d.clone()
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *Collection) resolve(data Attributes) (Attributes, error) {
	attrs := make(Attributes, len(c.schema))
	for _, a := range c.schema {
		v, err := Apply(a.Name, data[a.Name], a.Rules)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		attrs[a.Name] = cloneValue(v)
	}
	return attrs, nil
}
