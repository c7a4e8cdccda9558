package worker_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"propembed/internal/listing"
	"propembed/internal/worker"
)

// Mocks

type MockInserter struct{ mock.Mock }

func (m *MockInserter) InsertMany(ctx context.Context, records []listing.EnrichedRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

type MockFailureRecorder struct{ mock.Mock }

func (m *MockFailureRecorder) RecordFailure(ctx context.Context, f worker.Failure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

// In-memory stores

type memCursor struct {
	items  []interface{}
	pos    int
	tail   error
	err    error
	closed bool
}

func (c *memCursor) Next(ctx context.Context) bool {
	if c.pos >= len(c.items) {
		c.err = c.tail
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) Decode(val interface{}) error {
	item := c.items[c.pos-1]
	if err, ok := item.(error); ok {
		return err
	}
	doc, err := bson.Marshal(item)
	if err != nil {
		return err
	}
	return bson.Unmarshal(doc, val)
}

func (c *memCursor) Err() error                      { return c.err }
func (c *memCursor) Close(ctx context.Context) error { c.closed = true; return nil }

// memSource hands every Scan a fresh cursor over the same items. Items are
// marshalled to BSON on Decode; an item that is an error fails to decode.
type memSource struct {
	items     []interface{}
	scanErr   error
	cursorErr error

	mu    sync.Mutex
	scans int
}

func newMemSource(props ...listing.Property) *memSource {
	items := make([]interface{}, len(props))
	for i, p := range props {
		items[i] = p
	}
	return &memSource{items: items}
}

func (s *memSource) Count(ctx context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

func (s *memSource) Scan(ctx context.Context) (worker.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return &memCursor{items: s.items, tail: s.cursorErr}, nil
}

type memTarget struct {
	mu        sync.Mutex
	records   []listing.EnrichedRecord
	inserts   []int
	insertErr error
	// partial is how many records of a failing batch still get stored.
	partial   int
	existsErr error
	indexed   []string
}

func (t *memTarget) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.existsErr != nil {
		return false, t.existsErr
	}
	for _, r := range t.records {
		if r.Listing.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTarget) InsertMany(ctx context.Context, records []listing.EnrichedRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inserts = append(t.inserts, len(records))
	if t.insertErr != nil {
		n := t.partial
		if n > len(records) {
			n = len(records)
		}
		t.records = append(t.records, records[:n]...)
		return t.insertErr
	}
	t.records = append(t.records, records...)
	return nil
}

func (t *memTarget) EnsureIndex(ctx context.Context, field string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexed = append(t.indexed, field)
	return nil
}

func (t *memTarget) snapshot() []listing.EnrichedRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]listing.EnrichedRecord(nil), t.records...)
}

type memOpener struct {
	source worker.SourceStore
	target worker.TargetStore
	err    error

	mu     sync.Mutex
	opened int
	closed int
}

func (o *memOpener) Open(ctx context.Context) (*worker.Handles, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return &worker.Handles{
		Source: o.source,
		Target: o.target,
		Close: func(ctx context.Context) error {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.closed++
			return nil
		},
	}, nil
}

// stubEmbedder returns vec for every text, or err when set.
type stubEmbedder struct {
	vec []float32
	err error

	mu    sync.Mutex
	calls int
	texts []string
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type recordingPublisher struct {
	topics []string
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) Publish(topic string, body []byte) error {
	p.topics = append(p.topics, topic)
	p.bodies = append(p.bodies, body)
	return p.err
}

func newProperties(n int) []listing.Property {
	props := make([]listing.Property, n)
	for i := range props {
		props[i] = listing.Property{
			ID:   primitive.NewObjectID(),
			City: "City",
			Ad:   &listing.Ad{Title: "Listing"},
		}
	}
	return props
}
