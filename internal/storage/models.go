// Package storage provides the Postgres-backed product catalog store.
package storage

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// Product is a catalog entity. Category, Brand and ImageURL are nullable;
// Embedding is empty until the batch embedding job has processed the row.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    *string   `json:"category"`
	Brand       *string   `json:"brand"`
	ImageURL    *string   `json:"image_url"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	Specs       SpecMap   `json:"specs"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InStock reports whether the product has units available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// EmbeddingText returns the text the catalog embedding is computed from.
func (p *Product) EmbeddingText() string {
	return p.Name + " " + p.Description
}

// SpecMap is a free-form specification map stored as JSONB.
type SpecMap map[string]interface{}

// Value implements driver.Valuer.
func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *SpecMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("specs: cannot scan %T", src)
	}

	return json.Unmarshal(data, m)
}
