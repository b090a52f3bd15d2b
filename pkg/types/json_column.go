package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn persists any JSON-encodable value in a text/jsonb column.
type JSONColumn[T any] struct {
	Val T
}

func NewJSONColumn[T any](v T) JSONColumn[T] {
	return JSONColumn[T]{Val: v}
}

// Value marshals the payload into JSON for the database.
func (c JSONColumn[T]) Value() (driver.Value, error) {
	buf, err := json.Marshal(c.Val)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes the stored JSON. NULL leaves the zero value.
func (c *JSONColumn[T]) Scan(value interface{}) error {
	var zero T
	if value == nil {
		c.Val = zero
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("json column: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		c.Val = zero
		return nil
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("json column: %w", err)
	}
	c.Val = out
	return nil
}
