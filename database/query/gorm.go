package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ApplyToGorm filters, counts, sorts and pages db. db must carry a Model
// or Table so the count has a target.
func ApplyToGorm[T any](db *gorm.DB, p Params, cfg Config) (*Result[T], error) {
	q := db.Session(&gorm.Session{})
	if p.Search != "" && len(cfg.SearchFields) > 0 {
		q = applySearch(q, p.Search, cfg.SearchFields)
	}
	for _, c := range p.Conditions {
		q = applyCondition(q, c, cfg)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	q = applySort(q, p, cfg)
	page := max(p.Page, 1)
	size := p.PageSize
	if !p.NoPagination {
		if size <= 0 {
			size = DefaultPageSize
		}
		q = q.Offset((page - 1) * size).Limit(size)
	}

	data := make([]T, 0)
	if err := q.Find(&data).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	pg := Pagination{Page: page, PageSize: size, Total: int(total), TotalPages: 1}
	if p.NoPagination {
		pg.Page, pg.PageSize = 1, int(total)
	} else if total > 0 {
		pg.TotalPages = (int(total) + size - 1) / size
	}
	return &Result[T]{Data: data, Pagination: pg}, nil
}

func applySearch(db *gorm.DB, search string, fields []string) *gorm.DB {
	pattern := "%" + strings.ToLower(search) + "%"
	conds := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", f))
		args = append(args, pattern)
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

func applyCondition(db *gorm.DB, c Condition, cfg Config) *gorm.DB {
	col := cfg.ResolveField(c.Field)
	switch c.Operator {
	case OpEq:
		return db.Where(col+" = ?", c.Value)
	case OpNeq:
		return db.Where(col+" <> ?", c.Value)
	case OpGt:
		return db.Where(col+" > ?", c.Value)
	case OpGte:
		return db.Where(col+" >= ?", c.Value)
	case OpLt:
		return db.Where(col+" < ?", c.Value)
	case OpLte:
		return db.Where(col+" <= ?", c.Value)
	case OpIn:
		if len(c.Values) > 0 {
			return db.Where(col+" IN ?", c.Values)
		}
		if c.Value != "" {
			return db.Where(col+" IN ?", strings.Split(c.Value, ","))
		}
	case OpIlike:
		return db.Where("LOWER("+col+") LIKE ?", "%"+strings.ToLower(c.Value)+"%")
	}
	return db
}

// applySort orders by the requested field when allowed, then by the
// default so pages are stable.
func applySort(db *gorm.DB, p Params, cfg Config) *gorm.DB {
	if p.SortBy != "" && cfg.sortable(p.SortBy) {
		order := cfg.ResolveField(p.SortBy)
		if p.SortOrder == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	}
	if cfg.DefaultSort != "" {
		db = db.Order(cfg.DefaultSort)
	}
	return db
}
