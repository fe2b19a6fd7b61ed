package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/catalog"
	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
	emailsvc "github.com/makemyfuture/planner/services/email"
	inmemdb "github.com/makemyfuture/planner/storage/database/inmem"
	"github.com/makemyfuture/planner/tests"
)

const testCatalogDoc = `{
  "AREAS": [{"EC": "English Communication"}, {"MQR": "Mathematical Concepts"}],
  "DIVISIONS": [{"MATH": "Mathematics"}, {"ENGL": "English"}],
  "CLASSES": [
    {"DIVISION": "MATH", "NUMBER": "101C", "NAME": "Calculus I", "UNITS": 3, "AREA-ACR": "MQR"},
    {"DIVISION": "ENGL", "NUMBER": "101A", "NAME": "College Composition", "UNITS": 4, "AREA-ACR": "EC"}
  ]
}`

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// docSource serves a catalog document from memory.
type docSource []byte

func (src docSource) Fetch(context.Context) ([]byte, error) { return src, nil }

func newTestConfig() *core.Config {
	return &core.Config{
		AppName:                   "MakeMyFuture",
		Env:                       "TEST",
		TestMode:                  true,
		SecretKey:                 []byte("secret"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Port:               "8000",
			JWTExpirationDelta: 10 * time.Minute,
			SessionCookieName:  "session",
			SessionCookieAge:   5 * 24 * time.Hour,
		},
	}
}

type testEnv struct {
	conf      *core.Config
	server    *Server
	userSvc   user.ServiceInterface
	schedSvc  schedule.ServiceInterface
	userRepo  user.Repository
	schedRepo schedule.Repository
}

func setupTestServer(t *testing.T, loadCatalog bool) *testEnv {
	t.Helper()
	conf := newTestConfig()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setupTestServer() failed: %v", err)
	}
	userRepo := inmemdb.NewUserRepository(db)
	schedRepo := inmemdb.NewScheduleRepository(db)

	userSvc := user.NewServiceMock(conf, userRepo, emailsvc.NewConsoleServiceMock(conf))
	schedSvc := schedule.NewService(schedRepo)

	loader := catalog.NewLoader(docSource(testCatalogDoc))
	if loadCatalog {
		loader.Start(context.Background())
		if _, err := loader.Await(context.Background()); err != nil {
			t.Fatalf("setupTestServer() failed: %v", err)
		}
	}

	server := NewServer(conf, nopLogger{}, validate, translator, userSvc, schedSvc, loader)
	return &testEnv{
		conf:      conf,
		server:    server,
		userSvc:   userSvc,
		schedSvc:  schedSvc,
		userRepo:  userRepo,
		schedRepo: schedRepo,
	}
}

func (env *testEnv) createUser(t *testing.T, uname, email, pwd string, isActive bool) user.User {
	return testutil.CreateUser(t, env.userRepo, uname, email, pwd, isActive)
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
