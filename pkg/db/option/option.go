// Package option provides composable query modifiers for the generic
// repository.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Condition is a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a comparison clause on an allow-listed column name.
func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := sanitizeColumn(cond.Field)
		if field == "" {
			return db
		}
		return db.Where(fmt.Sprintf("%s %s ?", field, cond.Operator), cond.Value)
	})
}

// QuerySortBy restricts ordering to allowed columns.
type QuerySortBy struct {
	Field string
	Desc  bool
	Allow map[string]bool
}

// WithSortBy orders the result set. Unknown columns fall back to created_at
// descending so callers cannot inject arbitrary SQL through sort parameters.
func WithSortBy(sort QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := sanitizeColumn(sort.Field)
		if field == "" || (sort.Allow != nil && !sort.Allow[field]) {
			field = "created_at"
			sort.Desc = true
		}
		direction := "ASC"
		if sort.Desc {
			direction = "DESC"
		}
		return db.Order(fmt.Sprintf("%s %s", field, direction))
	})
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithOffset skips the given number of rows.
func WithOffset(offset int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithPreload eagerly loads an association.
func WithPreload(association string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if strings.TrimSpace(association) == "" {
			return db
		}
		return db.Preload(association)
	})
}

func sanitizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return ""
		}
	}
	return name
}
