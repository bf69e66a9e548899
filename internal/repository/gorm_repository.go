package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRecord is the row layout shared by every collection in SQL backends.
// The timestamp columns mirror the createdAt/updatedAt fields for ordering.
type DocumentRecord struct {
	Collection string    `gorm:"primaryKey;type:varchar(64)"`
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false"`
}

// TableName keeps all collections in one table
func (DocumentRecord) TableName() string {
	return "documents"
}

func (r DocumentRecord) document() (*Document, error) {
	fields := map[string]any{}
	if r.Data != "" {
		if err := json.Unmarshal([]byte(r.Data), &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", r.ID, err)
		}
	}
	return &Document{ID: r.ID, Fields: fields}, nil
}

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the documents table
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Collection returns the named collection
func (s *GormStore) Collection(name string) Collection {
	return &gormCollection{db: s.db, name: name}
}

// Close closes the underlying connection pool
func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormCollection struct {
	db   *gorm.DB
	name string
}

func (c *gormCollection) Name() string {
	return c.name
}

func (c *gormCollection) Add(ctx context.Context, fields map[string]any) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	now := time.Now().UTC()
	record := DocumentRecord{
		Collection: c.name,
		ID:         uuid.NewString(),
		Data:       string(data),
		CreatedAt:  timeFieldOr(fields, "createdAt", now),
		UpdatedAt:  timeFieldOr(fields, "updatedAt", now),
	}

	if err := c.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (c *gormCollection) Get(ctx context.Context, id string) (*Document, error) {
	var record DocumentRecord
	err := c.db.WithContext(ctx).
		Where("collection = ? AND id = ?", c.name, id).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record.document()
}

func (c *gormCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record DocumentRecord
		if err := tx.Where("collection = ? AND id = ?", c.name, id).Take(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		doc, err := record.document()
		if err != nil {
			return err
		}
		for k, v := range fields {
			doc.Fields[k] = v
		}

		data, err := json.Marshal(doc.Fields)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}

		return tx.Model(&DocumentRecord{}).
			Where("collection = ? AND id = ?", c.name, id).
			Updates(map[string]any{
				"data":       string(data),
				"updated_at": timeFieldOr(fields, "updatedAt", record.UpdatedAt),
			}).Error
	})
}

func (c *gormCollection) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).
		Where("collection = ? AND id = ?", c.name, id).
		Delete(&DocumentRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *gormCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	query := c.db.WithContext(ctx).Where("collection = ?", c.name)
	for _, cond := range q.Where {
		query = c.applyCondition(query, cond)
	}
	if q.OrderBy != nil {
		query = query.Order(c.orderExpression(*q.OrderBy)).Order("id")
	}

	var records []DocumentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(records))
	for _, record := range records {
		doc, err := record.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// fieldExpression extracts a top-level JSON field as SQL text for the
// connected dialect. field has been validated by ValidateQuery.
func (c *gormCollection) fieldExpression(field string) string {
	switch c.db.Dialector.Name() {
	case "postgres":
		return fmt.Sprintf("(data::jsonb ->> '%s')", field)
	case "mysql":
		return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(data, '$.%s'))", field)
	default:
		return fmt.Sprintf("json_extract(data, '$.%s')", field)
	}
}

func (c *gormCollection) applyCondition(query *gorm.DB, cond Condition) *gorm.DB {
	dialect := c.db.Dialector.Name()
	value := normalizeValue(cond.Value)

	if value == nil {
		if dialect == "mysql" {
			raw := fmt.Sprintf("JSON_EXTRACT(data, '$.%s')", cond.Field)
			return query.Where(fmt.Sprintf("(%s IS NULL OR JSON_TYPE(%s) = 'NULL')", raw, raw))
		}
		return query.Where(c.fieldExpression(cond.Field) + " IS NULL")
	}

	if dialect == "sqlite" {
		return query.Where(c.fieldExpression(cond.Field)+" = ?", value)
	}
	return query.Where(c.fieldExpression(cond.Field)+" = ?", textValue(value))
}

func (c *gormCollection) orderExpression(order Order) string {
	var column string
	switch order.Field {
	case "createdAt":
		column = "created_at"
	case "updatedAt":
		column = "updated_at"
	default:
		column = c.fieldExpression(order.Field)
	}
	if order.Descending {
		return column + " DESC"
	}
	return column + " ASC"
}

func timeFieldOr(fields map[string]any, key string, fallback time.Time) time.Time {
	if t, ok := timeValue(fields[key]); ok {
		return t
	}
	return fallback
}
