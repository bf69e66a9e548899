package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
	"github.com/yukikurage/task-dashboard-api/internal/realtime"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
)

type record interface {
	LastUpdated() time.Time
}

// collection implements the operations shared by every entity service:
// read, query, delete and subscribe, plus the timestamped write helpers.
type collection[T record] struct {
	docs   repository.Collection
	entity string
	decode func(repository.Document) (T, error)
	topic  *realtime.Topic[T]
	clock  func() time.Time
	log    logrus.FieldLogger

	// publishMu orders snapshot reads with subscription setup so that
	// subscribers observe writes in order and never miss one
	publishMu sync.Mutex
}

func newCollection[T record](docs repository.Collection, entity string, log logrus.FieldLogger) *collection[T] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &collection[T]{
		docs:   docs,
		entity: entity,
		decode: decodeDocument[T],
		topic:  realtime.NewTopic[T](docs.Name()),
		clock:  time.Now,
		log:    log.WithField("collection", docs.Name()),
	}
}

// GetAll returns every record, newest first unless an order is given
func (c *collection[T]) GetAll(ctx context.Context, order ...repository.Order) ([]T, error) {
	q := repository.Query{OrderBy: defaultOrder()}
	if len(order) > 0 {
		q.OrderBy = &order[0]
	}
	return c.find(ctx, q, "fetch "+c.docs.Name())
}

// GetByID returns the record with the given identifier
func (c *collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	doc, err := c.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError(c.docs.Name(), id)
		}
		return nil, apierrors.NewStoreError("fetch "+c.entity, err)
	}

	rec, err := c.decode(*doc)
	if err != nil {
		return nil, apierrors.NewStoreError("decode "+c.entity, err)
	}
	return &rec, nil
}

// QueryByField returns the records whose field equals value
func (c *collection[T]) QueryByField(ctx context.Context, field string, value any) ([]T, error) {
	return c.Where(ctx, repository.Condition{Field: field, Value: value})
}

// Where returns the records matching every condition, newest first
func (c *collection[T]) Where(ctx context.Context, conds ...repository.Condition) ([]T, error) {
	q := repository.Query{Where: conds, OrderBy: defaultOrder()}
	recs, err := c.find(ctx, q, "query "+c.docs.Name())
	if errors.Is(err, repository.ErrInvalidField) {
		return nil, apierrors.NewValidationError("field", "Invalid filter field")
	}
	return recs, err
}

// Delete removes the record; deleting an absent record fails
func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.docs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.NewNotFoundError(c.docs.Name(), id)
		}
		return apierrors.NewStoreError("delete "+c.entity, err)
	}

	c.notify(ctx)
	return nil
}

// Subscribe delivers the current snapshot to listener immediately and then a
// fresh snapshot after every write to the collection. A failure to read the
// initial snapshot is returned and nothing is registered. Listeners run on
// the writing goroutine and must not write to the same collection.
func (c *collection[T]) Subscribe(ctx context.Context, listener realtime.Listener[T]) (*realtime.Subscription, error) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	snapshot, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sub := c.topic.Subscribe(listener)
	listener(snapshot)
	return sub, nil
}

// insert stamps both timestamps and stores a new document
func (c *collection[T]) insert(ctx context.Context, fields map[string]any) (*T, error) {
	now := c.now()
	fields[constants.FieldCreatedAt] = now
	fields[constants.FieldUpdatedAt] = now

	id, err := c.docs.Add(ctx, fields)
	if err != nil {
		return nil, apierrors.NewStoreError("create "+c.entity, err)
	}

	rec, err := c.decode(repository.Document{ID: id, Fields: fields})
	if err != nil {
		return nil, apierrors.NewStoreError("decode "+c.entity, err)
	}

	c.notify(ctx)
	return &rec, nil
}

// patch merges fields into an existing document and refreshes updatedAt
func (c *collection[T]) patch(ctx context.Context, id string, fields map[string]any) (*T, error) {
	existing, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// updatedAt must move forward even when two writes share a millisecond
	now := c.now()
	if prev := (*existing).LastUpdated(); !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	fields[constants.FieldUpdatedAt] = now

	if err := c.docs.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError(c.docs.Name(), id)
		}
		return nil, apierrors.NewStoreError("update "+c.entity, err)
	}

	updated, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.notify(ctx)
	return updated, nil
}

func (c *collection[T]) find(ctx context.Context, q repository.Query, op string) ([]T, error) {
	docs, err := c.docs.Find(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidField) {
			return nil, err
		}
		return nil, apierrors.NewStoreError(op, err)
	}

	recs := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := c.decode(doc)
		if err != nil {
			return nil, apierrors.NewStoreError("decode "+c.entity, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// notify publishes a fresh snapshot when anyone is listening
func (c *collection[T]) notify(ctx context.Context) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if c.topic.Len() == 0 {
		return
	}

	snapshot, err := c.GetAll(context.WithoutCancel(ctx))
	if err != nil {
		c.log.WithError(err).Warn("Failed to read snapshot for subscribers")
		return
	}
	c.topic.Publish(snapshot)
}

// now returns the current time in UTC at the millisecond precision every
// backend can store
func (c *collection[T]) now() time.Time {
	return c.clock().UTC().Truncate(time.Millisecond)
}

func defaultOrder() *repository.Order {
	return &repository.Order{Field: constants.FieldCreatedAt, Descending: true}
}

// decodeDocument maps a schemaless document onto a typed record through JSON,
// which also normalizes backend-specific value types such as BSON dates.
// Records carry their identifier under the "id" key.
func decodeDocument[T any](doc repository.Document) (T, error) {
	var rec T
	fields := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	fields["id"] = doc.ID

	data, err := json.Marshal(fields)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
