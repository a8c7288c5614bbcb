// Package db holds driver-level column types shared by the store layer.
package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// URLList is the ordered set of post URLs attached to a trend, stored as a
// jsonb array. It implements sql.Scanner and driver.Valuer so trend rows
// read and write through sqlx without manual marshalling.
type URLList []string

// Scan implements sql.Scanner. NULL columns scan to an empty list.
func (u *URLList) Scan(src interface{}) error {
	if u == nil {
		return fmt.Errorf("db: Scan on nil *URLList")
	}
	if src == nil {
		*u = URLList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("db: cannot scan type %T into URLList", src)
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return fmt.Errorf("db: decode url list: %w", err)
	}
	*u = urls
	return nil
}

// Value implements driver.Valuer. A nil list writes an empty jsonb array,
// never NULL, so readers can skip a null check.
func (u URLList) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(u))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
