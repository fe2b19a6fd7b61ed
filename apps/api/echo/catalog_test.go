package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/makemyfuture/planner/core/catalog"
	appfs "github.com/makemyfuture/planner/fs"
)

func Test_catalogApi_query(t *testing.T) {
	env := setupTestServer(t, true)

	calc := catalog.Course{Division: "MATH", Number: "101C", Name: "Calculus I", Units: 3, Areas: []string{"MQR"}}
	compo := catalog.Course{Division: "ENGL", Number: "101A", Name: "College Composition", Units: 4, Areas: []string{"EC"}}

	query := func(typ, data string) []byte {
		return marchallObj(t, CatalogQueryRequest{Type: typ, Data: data})
	}

	tests := []httpTest{
		{
			name:     "areas",
			body:     query("AREAS", ""),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []catalog.RequirementArea{
				{Code: "EC", Name: "English Communication", Courses: []string{"ENGL-101A"}},
				{Code: "MQR", Name: "Mathematical Concepts", Courses: []string{"MATH-101C"}},
			}),
		},
		{
			name:     "divisions",
			body:     query("DIVISIONS", ""),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []catalog.Division{
				{Code: "MATH", Name: "Mathematics"},
				{Code: "ENGL", Name: "English"},
			}),
		},
		{
			name:     "classes in a division",
			body:     query("CLASSES", "MATH"),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []catalog.Course{calc}),
		},
		{
			name:     "classes in an unknown division",
			body:     query("CLASSES", "LOL"),
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "single class",
			body:     query("CLASS", "ENGL-101A"),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, compo),
		},
		{
			name:     "single class (unknown)",
			body:     query("CLASS", "LOL-101"),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "course not found"}`),
		},
		{
			name:     "search by name",
			body:     query("SEARCH", "calc"),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []catalog.Course{calc}),
		},
		{
			name:     "search by code",
			body:     query("SEARCH", "engl-101"),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []catalog.Course{compo}),
		},
		{
			name:     "search (no match)",
			body:     query("SEARCH", "astronomy"),
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "unknown query type",
			body:     query("EVERYTHING", ""),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"type": "unknown query type"}`),
		},
		{
			name:     "type is case-sensitive",
			body:     query("areas", ""),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"type": "unknown query type"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/catalog/query", tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_queryWhileLoading(t *testing.T) {
	env := setupTestServer(t, false) // loader never started

	req, rec := newRequest(http.MethodPost, "/v1/catalog/query", []byte(`{"type": "AREAS"}`))
	env.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusServiceUnavailable,
		wantData: []byte(`{"error": "course catalog is still loading"}`),
	}, rec)
}

func Test_catalogApi_majorColleges(t *testing.T) {
	env := setupTestServer(t, true)

	req, rec := newRequest(http.MethodGet, "/v1/catalog/major-colleges")
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	want, err := appfs.FS.ReadFile("assets/major_colleges.json")
	if err != nil {
		t.Fatalf("reading asset failed: %v", err)
	}
	assert.JSONEq(t, string(want), rec.Body.String())
}
