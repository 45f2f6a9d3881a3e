package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a query built by the generic repository.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyOrder sorts by a column. Only identifiers made of letters, digits and underscores are accepted.
func ApplyOrder(column string, desc bool) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		column = strings.TrimSpace(column)
		if !isIdentifier(column) {
			return db
		}
		if desc {
			return db.Order(column + " DESC")
		}
		return db.Order(column + " ASC")
	})
}

func ApplyLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// ApplyWhere appends a raw condition with bound arguments.
func ApplyWhere(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// ApplyTitleContains filters on a case-insensitive title substring.
func ApplyTitleContains(term string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return db
		}
		return db.Where("LOWER(title) LIKE ?", "%"+stripWildcards(term)+"%")
	})
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

func stripWildcards(s string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(s)
}
