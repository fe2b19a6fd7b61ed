package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makemyfuture/planner/core/schedule"
)

func Test_scheduleApi_authRequired(t *testing.T) {
	env := setupTestServer(t, true)
	naughty := env.createUser(t, "ndog", "ndog@test.cd", "LeP@ssw0rd", false)

	tests := []httpTest{
		{
			name:     "anonymous",
			wantCode: http.StatusUnauthorized,
			wantData: []byte(`{"error": "missing or malformed jwt"}`),
		},
		{
			name:     "deactivated account",
			token:    env.getToken(t, naughty),
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error": "account deactivated"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/schedules", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_createAndList(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	token := env.getToken(t, usr)

	t.Run("empty list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	})

	body := marchallObj(t, schedule.NewSchedule{
		Name:         "My Plan",
		Majors:       []string{"Computer Science"},
		Universities: []string{"UCLA"},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules", token, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var sched schedule.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))
		assert.NotEmpty(t, sched.ID)
		assert.Equal(t, usr.ID, sched.UserID)
		assert.Equal(t, "My Plan", sched.Name)
		assert.Empty(t, sched.Semesters)
	})

	t.Run("name taken", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules", token, body)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": "a schedule with this name already exists"}`),
		}, rec)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedules", token, []byte(`{"name": "Oops"}`))
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"majors": "this field is required", "universities": "this field is required"}`),
		}, rec)
	})

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules", token)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var scheds []schedule.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scheds))
		require.Len(t, scheds, 1)
		assert.Equal(t, "My Plan", scheds[0].Name)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		other := env.createUser(t, "hero", "hero@test.cd", "LeP@ssw0rd", true)
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules", env.getToken(t, other))
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	})
}

func Test_scheduleApi_detail(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	token := env.getToken(t, usr)

	sched := testutilCreateSchedule(t, env, usr.ID, "Fall Plan")
	detailPath := "/v1/schedules/" + url.PathEscape("Fall Plan")

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, detailPath, token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, sched)}, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedules/lol", token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "schedule not found"}`),
		}, rec)
	})

	t.Run("save updates in place", func(t *testing.T) {
		sched.Semesters = []schedule.Semester{
			{Season: "Fall", Year: "2021", Classes: []string{"MATH-101C"}},
		}
		sched.CreditsRequired = 60
		req, rec := newAuthRequest(http.MethodPut, detailPath, token, marchallObj(t, sched))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got schedule.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, sched.ID, got.ID) // same document
		assert.Equal(t, sched.CreatedAt.Unix(), got.CreatedAt.Unix())
		assert.Equal(t, sched.Semesters, got.Semesters)
		assert.Equal(t, float64(60), got.CreditsRequired)
	})

	anotherPath := "/v1/schedules/" + url.PathEscape("Another Plan")

	t.Run("save creates under a new name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, anotherPath, token, marchallObj(t, sched))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got schedule.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEqual(t, sched.ID, got.ID)
		assert.Equal(t, "Another Plan", got.Name)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, anotherPath, token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, anotherPath, token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_scheduleApi_edit(t *testing.T) {
	env := setupTestServer(t, true)
	usr := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	token := env.getToken(t, usr)

	testutilCreateSchedule(t, env, usr.ID, "My Plan")
	editPath := "/v1/schedules/" + url.PathEscape("My Plan") + "/edit"

	edit := func(typ, code, season, year string) []byte {
		return marchallObj(t, schedule.Edit{Type: typ, Code: code, Season: season, Year: year})
	}
	semesters := func(t *testing.T, rec *httptest.ResponseRecorder) []schedule.Semester {
		t.Helper()
		var sched schedule.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))
		return sched.Semesters
	}

	t.Run("add appends a new semester", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, editPath, token, edit("ADD", "MATH-101C", "Fall", "2021"))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []schedule.Semester{
			{Season: "Fall", Year: "2021", Classes: []string{"MATH-101C"}},
		}, semesters(t, rec))
	})

	t.Run("re-add is a no-op", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, editPath, token, edit("ADD", "MATH-101C", "Fall", "2021"))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []schedule.Semester{
			{Season: "Fall", Year: "2021", Classes: []string{"MATH-101C"}},
		}, semesters(t, rec))
	})

	t.Run("remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, editPath, token, edit("REMOVE", "MATH-101C", "Fall", "2021"))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []schedule.Semester{
			{Season: "Fall", Year: "2021", Classes: []string{}},
		}, semesters(t, rec))
	})

	tests := []httpTest{
		{
			name:     "unknown type",
			body:     edit("MOVE", "MATH-101C", "Fall", "2021"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"type": "type must be one of [ADD REMOVE]"}`),
		},
		{
			name:     "bad season",
			body:     edit("ADD", "MATH-101C", "Autumn", "2021"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"season": "must be one of Winter, Spring, Summer or Fall"}`),
		},
		{
			name:     "bad year",
			body:     edit("ADD", "MATH-101C", "Fall", "21"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"year": "year must be 4 characters in length"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, editPath, token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_batch(t *testing.T) {
	env := setupTestServer(t, true)
	usr1 := env.createUser(t, "awe", "awe@test.cd", "LeP@ssw0rd", true)
	usr2 := env.createUser(t, "hero", "hero@test.cd", "LeP@ssw0rd", true)
	token := env.getToken(t, usr1)

	s1 := testutilCreateSchedule(t, env, usr1.ID, "CS Transfer")
	s2 := testutilCreateSchedule(t, env, usr2.ID, "Math Transfer")

	filter := func(f schedule.QueryFilter) []byte { return marchallObj(t, f) }

	tests := []httpTest{
		{name: "all", body: filter(schedule.QueryFilter{}), wantData: marchallObj(t, []schedule.Schedule{s1, s2})},
		{name: "search", body: filter(schedule.QueryFilter{Search: "cs"}), wantData: marchallObj(t, []schedule.Schedule{s1})},
		{name: "search (unknown)", body: filter(schedule.QueryFilter{Search: "lol"}), wantData: []byte(`[]`)},
		{name: "majors", body: filter(schedule.QueryFilter{Majors: []string{"Computer Science"}}), wantData: marchallObj(t, []schedule.Schedule{s1, s2})},
		{name: "universities (unknown)", body: filter(schedule.QueryFilter{Universities: []string{"MIT"}}), wantData: []byte(`[]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/schedules/batch", token, tt.body)
			env.server.ServeHTTP(rec, req)

			tt.wantCode = http.StatusOK
			checkCodeAndData(t, tt, rec)
		})
	}
}

// testutilCreateSchedule seeds a schedule through the service so timestamps
// and IDs are assigned the same way the API assigns them.
func testutilCreateSchedule(t *testing.T, env *testEnv, userID, name string) schedule.Schedule {
	t.Helper()
	sched, err := env.schedSvc.Create(userID, schedule.NewSchedule{
		Name:         name,
		Majors:       []string{"Computer Science"},
		Universities: []string{"UCLA"},
	})
	if err != nil {
		t.Fatalf("testutilCreateSchedule() failed: %v", err)
	}
	return sched
}
