package query

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/kbukum/clinic/database/testutil"
)

var visitQuery = Config{
	SearchFields:      []string{"name"},
	AllowedSortFields: []string{"id", "name", "day"},
	AllowedFilters:    []string{"day", "room"},
	FieldAliases:      map[string]string{"day": "visit_day"},
	DefaultSort:       "id",
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc"}},
		{"page and limit", "page=3&limit=5", Params{Page: 3, PageSize: 5, SortOrder: "asc"}},
		{"limit clamped", "limit=1000", Params{Page: 1, PageSize: MaxPageSize, SortOrder: "asc"}},
		{"bad numbers", "page=-2&limit=x", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc"}},
		{"limit all", "limit=all", Params{Page: 1, PageSize: DefaultPageSize, NoPagination: true, SortOrder: "asc"}},
		{"sort desc", "sort=name&order=DESC", Params{Page: 1, PageSize: DefaultPageSize, SortBy: "name", SortOrder: "desc"}},
		{"search trimmed", "search=+ann+", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc", Search: "ann"}},
		{"operator filter", "day=gte.2026-01-01", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc",
			Conditions: []Condition{{Field: "day", Operator: OpGte, Value: "2026-01-01"}}}},
		{"plain value is eq", "room=B.12", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc",
			Conditions: []Condition{{Field: "room", Operator: OpEq, Value: "B.12"}}}},
		{"in list", "room=in.(a, b,)", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc",
			Conditions: []Condition{{Field: "room", Operator: OpIn, Values: []string{"a", "b"}}}}},
		{"unknown filter ignored", "secret=eq.1", Params{Page: 1, PageSize: DefaultPageSize, SortOrder: "asc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			if got := Parse(values, visitQuery); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

type visit struct {
	ID       int64
	Name     string
	Room     string
	VisitDay string
}

func TestApplyToGorm(t *testing.T) {
	db := testutil.NewDB(t, &visit{})
	seed := []visit{
		{Name: "Ann", Room: "a", VisitDay: "2026-01-03"},
		{Name: "Bob", Room: "b", VisitDay: "2026-01-01"},
		{Name: "Cid", Room: "a", VisitDay: "2026-01-02"},
		{Name: "Dee", Room: "c", VisitDay: "2026-01-04"},
		{Name: "annex", Room: "b", VisitDay: "2026-01-05"},
	}
	if err := db.GormDB.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantPage  Pagination
	}{
		{"first page", "limit=2", []string{"Ann", "Bob"}, Pagination{Page: 1, PageSize: 2, Total: 5, TotalPages: 3}},
		{"last page", "limit=2&page=3", []string{"annex"}, Pagination{Page: 3, PageSize: 2, Total: 5, TotalPages: 3}},
		{"past the end", "limit=2&page=9", []string{}, Pagination{Page: 9, PageSize: 2, Total: 5, TotalPages: 3}},
		{"no pagination", "limit=all", []string{"Ann", "Bob", "Cid", "Dee", "annex"}, Pagination{Page: 1, PageSize: 5, Total: 5, TotalPages: 1}},
		{"search is case-insensitive", "search=ANN", []string{"Ann", "annex"}, Pagination{Page: 1, PageSize: 20, Total: 2, TotalPages: 1}},
		{"aliased sort", "sort=day&order=desc&limit=2", []string{"annex", "Dee"}, Pagination{Page: 1, PageSize: 2, Total: 5, TotalPages: 3}},
		{"aliased range", "day=lt.2026-01-03", []string{"Bob", "Cid"}, Pagination{Page: 1, PageSize: 20, Total: 2, TotalPages: 1}},
		{"in list", "room=in.(a,c)", []string{"Ann", "Cid", "Dee"}, Pagination{Page: 1, PageSize: 20, Total: 3, TotalPages: 1}},
		{"neq", "room=neq.a", []string{"Bob", "Dee", "annex"}, Pagination{Page: 1, PageSize: 20, Total: 3, TotalPages: 1}},
		{"empty match", "search=zzz", []string{}, Pagination{Page: 1, PageSize: 20, Total: 0, TotalPages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			res, err := ApplyToGorm[visit](db.GormDB.Model(&visit{}), Parse(values, visitQuery), visitQuery)
			if err != nil {
				t.Fatalf("ApplyToGorm: %v", err)
			}
			names := make([]string, 0, len(res.Data))
			for _, v := range res.Data {
				names = append(names, v.Name)
			}
			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
			if res.Pagination != tt.wantPage {
				t.Errorf("pagination = %+v, want %+v", res.Pagination, tt.wantPage)
			}
		})
	}
}
