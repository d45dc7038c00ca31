// Package query turns list-endpoint query strings into paginated, sorted
// and filtered GORM queries.
//
//	GET /doctors?page=2&limit=10&sort=last_name&order=desc&search=ann&specialty=eq.Cardiology
//
// Only fields named in a Config can be filtered or sorted on.
package query

// Operator is a filter operator in "field=op.value" form.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpIlike Operator = "ilike"
)

// IsValid reports whether o is a known operator.
func (o Operator) IsValid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpIlike:
		return true
	}
	return false
}

// Condition is one filter.
type Condition struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string // in
}

// Params are the parsed list parameters.
type Params struct {
	Page         int
	PageSize     int
	NoPagination bool
	SortBy       string
	SortOrder    string
	Search       string
	Conditions   []Condition
}

// All returns params that fetch every row in default order.
func All() Params {
	return Params{Page: 1, PageSize: DefaultPageSize, NoPagination: true, SortOrder: "asc"}
}

// AddCondition appends a filter.
func (p *Params) AddCondition(field string, op Operator, value string) {
	p.Conditions = append(p.Conditions, Condition{Field: field, Operator: op, Value: value})
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Result is one page of rows.
type Result[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Config declares what a list endpoint allows.
type Config struct {
	SearchFields      []string
	AllowedSortFields []string
	AllowedFilters    []string
	FieldAliases      map[string]string
	DefaultSort       string
}

// ResolveField maps a public field name to its column.
func (c Config) ResolveField(field string) string {
	if col, ok := c.FieldAliases[field]; ok {
		return col
	}
	return field
}

func (c Config) sortable(field string) bool {
	for _, f := range c.AllowedSortFields {
		if f == field {
			return true
		}
	}
	return false
}
