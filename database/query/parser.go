package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Parse reads page, limit, sort, order, search and one "field=op.value"
// parameter per allowed filter. limit=all disables pagination. Unknown
// fields and operators are ignored.
func Parse(values url.Values, cfg Config) Params {
	limit := values.Get("limit")
	p := Params{
		Page:         intOrDefault(values.Get("page"), 1),
		PageSize:     clamp(intOrDefault(limit, DefaultPageSize), 1, MaxPageSize),
		NoPagination: limit == "all" || limit == "-1",
		SortBy:       values.Get("sort"),
		SortOrder:    normalizeSortOrder(values.Get("order")),
		Search:       strings.TrimSpace(values.Get("search")),
	}
	for _, field := range cfg.AllowedFilters {
		if v := values.Get(field); v != "" {
			p.Conditions = append(p.Conditions, parseCondition(field, v))
		}
	}
	return p
}

// parseCondition reads "op.value" or "in.(a,b)". A value without a known
// operator prefix is an equality match on the whole string.
func parseCondition(field, value string) Condition {
	opStr, raw, ok := strings.Cut(value, ".")
	op := Operator(opStr)
	if !ok || !op.IsValid() {
		return Condition{Field: field, Operator: OpEq, Value: value}
	}
	if op == OpIn && strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		var vals []string
		for _, v := range strings.Split(raw[1:len(raw)-1], ",") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, v)
			}
		}
		return Condition{Field: field, Operator: op, Values: vals}
	}
	return Condition{Field: field, Operator: op, Value: raw}
}

func intOrDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func clamp(v, lower, upper int) int {
	return max(lower, min(v, upper))
}

func normalizeSortOrder(s string) string {
	if strings.EqualFold(s, "desc") {
		return "desc"
	}
	return "asc"
}
