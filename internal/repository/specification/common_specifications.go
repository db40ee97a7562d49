package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy sorts on a column. Field must be a trusted column name, never user input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field, Raw: true}, Desc: s.Desc})
}

// OrderByMany applies orderings in sequence, e.g. a timestamp then an id tie breaker.
func OrderByMany(orders ...OrderBy) Specification {
	return orderByMany(orders)
}

type orderByMany []OrderBy

func (s orderByMany) Apply(db *gorm.DB) *gorm.DB {
	for _, o := range s {
		db = o.Apply(db)
	}
	return db
}

// Pagination applies offset/limit; a non-positive Limit leaves the query unbounded.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	return db
}
