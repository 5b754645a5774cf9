package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/auth"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
	logsvc "github.com/trezcool/academia/services/logger"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
	"github.com/trezcool/academia/tests"
)

const secretKey = "test-secret"

var errUnauthenticated = httpErr{Error: "Could not validate credentials"}

type env struct {
	app            Server
	db             *sqlx.DB
	tokens         *auth.TokenService
	principalRepo  principal.Repository
	courseRepo     course.Repository
	courseworkRepo coursework.Repository
}

// setup builds the server on a fresh database. wrap, when given, decorates the course repository.
func setup(t *testing.T, wrap ...func(course.Repository) course.Repository) *env {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	principalRepo := sqlxrepos.NewPrincipalRepository(db)
	var courseRepo course.Repository = sqlxrepos.NewCourseRepository(db)
	for _, w := range wrap {
		courseRepo = w(courseRepo)
	}
	courseworkRepo := sqlxrepos.NewCourseworkRepository(db)

	// set up services
	conf := &core.Config{
		Env:      "test",
		TestMode: true,
		AppName:  "Academia",
		Server:   core.ServerConfig{DisableRequestLogs: true},
	}
	tokens, err := auth.NewTokenService(conf.AppName, secretKey, "HS256", 0)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	principalSvc := principal.NewService(principalRepo)
	courseSvc := course.NewService(db, courseRepo, principalRepo, courseworkRepo)
	validate, translator := core.NewValidator()

	// set up server
	app := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		AuthSvc:       auth.NewService(principalSvc, tokens),
		PrincipalSvc:  principalSvc,
		CourseSvc:     courseSvc,
		CourseworkSvc: coursework.NewService(courseworkRepo, courseSvc, principalRepo),
		Validate:      validate,
		Translator:    translator,
	})

	return &env{
		app:            app,
		db:             db,
		tokens:         tokens,
		principalRepo:  principalRepo,
		courseRepo:     courseRepo,
		courseworkRepo: courseworkRepo,
	}
}

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

func (tt httpTest) run(t *testing.T, app Server) {
	t.Run(tt.name, func(t *testing.T) {
		method := tt.method
		if method == "" {
			method = http.MethodGet
		}
		req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newFormRequest(path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, tokens *auth.TokenService, p principal.Principal) string {
	token, err := tokens.Issue(p)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token.AccessToken
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func detail(t *testing.T, msg string) []byte {
	return marchallObj(t, StatusResponse{StatusCode: http.StatusOK, Detail: msg})
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, "code; body %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
