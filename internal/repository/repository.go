package repository

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotFound is returned when no document exists for an identifier
var ErrNotFound = errors.New("document not found")

// ErrInvalidField is returned when a query references a field name that is not
// a plain top-level identifier
var ErrInvalidField = errors.New("invalid field name")

// Document is a schemaless record with a store-assigned identifier
type Document struct {
	ID     string
	Fields map[string]any
}

// Condition is a top-level field equality filter
type Condition struct {
	Field string
	Value any
}

// Order sorts query results by a single top-level field
type Order struct {
	Field      string
	Descending bool
}

// Query holds the filters and ordering for Find.
// All conditions must match. A nil OrderBy leaves ordering to the store.
type Query struct {
	Where   []Condition
	OrderBy *Order
}

// Collection defines per-collection document operations
type Collection interface {
	// Name returns the collection name
	Name() string

	// Add inserts a document and returns its generated identifier
	Add(ctx context.Context, fields map[string]any) (string, error)

	// Get returns the document with the given identifier
	Get(ctx context.Context, id string) (*Document, error)

	// Update merges fields into an existing document
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a document; deleting an absent document fails
	Delete(ctx context.Context, id string) error

	// Find returns the documents matching the query
	Find(ctx context.Context, query Query) ([]Document, error)
}

// Store hands out collections backed by one connection
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateQuery checks that every field referenced by q is a plain identifier
func ValidateQuery(q Query) error {
	for _, cond := range q.Where {
		if !fieldNamePattern.MatchString(cond.Field) {
			return ErrInvalidField
		}
	}
	if q.OrderBy != nil && !fieldNamePattern.MatchString(q.OrderBy.Field) {
		return ErrInvalidField
	}
	return nil
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
