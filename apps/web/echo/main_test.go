package echoweb_test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	. "github.com/flavorsense/flavorsense/apps/web/echo"
	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/rating"
	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	"github.com/flavorsense/flavorsense/services/email"
	"github.com/flavorsense/flavorsense/services/logger"
	"github.com/flavorsense/flavorsense/storage/csvdb"
	"github.com/flavorsense/flavorsense/tests"
)

const (
	staffUser = "staff"
	staffPass = "s3cret-pass"
)

// wednesday is the fixed "now" of the web tests (weekday index 2).
var wednesday = time.Date(2024, time.January, 3, 12, 0, 0, 0, time.UTC)

type testApp struct {
	Server
	db        *csvdb.DB
	storage   core.StorageConfig
	logs      *bytes.Buffer
	reviewSvc *review.Service
	board     *menu.Board
	mailer    *emailsvc.ConsoleService
}

// setup returns a fresh app; sending mail to any of failFor fails.
func setup(t *testing.T, failFor ...string) *testApp {
	prevNow := review.NowFunc
	review.NowFunc = func() time.Time { return wednesday }
	t.Cleanup(func() { review.NowFunc = prevNow })

	conf := &core.Config{
		Env:       "TEST",
		AppName:   "Flavorsense",
		SecretKey: "test-secret",
		LogLevel:  "off",
		Server:    core.ServerConfig{SessionMaxAge: time.Hour, ShutdownTimeout: time.Second},
		Staff:     core.StaffConfig{Username: staffUser, Password: staffPass},
		Menu:      core.MenuConfig{Breakfast: "Idli, Sambar", Lunch: "Rice, Dal", Dinner: "Chapathi"},
	}
	logs := new(bytes.Buffer)
	logger := logsvc.NewRollbarLogger(log.New(logs, "", 0), conf)

	// set up DB & services
	storage := testutil.StorageConfig(t)
	db, err := csvdb.Open(storage)
	if err != nil {
		t.Fatalf("csvdb.Open() failed: %v", err)
	}
	validate, translator := testutil.NewValidator()
	reviewSvc := review.NewService(csvdb.NewReviewRepository(db))
	studentSvc := student.NewService(csvdb.NewStudentRepository(db), reviewSvc, validate, translator)
	board := menu.NewBoard(menu.FromConfig(conf.Menu))
	mailer := emailsvc.NewConsoleServiceMock(failFor...)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		StudentSvc:     studentSvc,
		ReviewSvc:      reviewSvc,
		Ratings:        rating.NewStore(),
		Menu:           board,
		Reminders:      reminder.NewDispatcher(reviewSvc, board, mailer, logger),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{
		Server:    srv,
		db:        db,
		storage:   storage,
		logs:      logs,
		reviewSvc: reviewSvc,
		board:     board,
		mailer:    mailer,
	}
}

// client is a minimal cookie-keeping browser.
type client struct {
	t       *testing.T
	app     http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app http.Handler) *client {
	return &client{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.app.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
		} else {
			c.cookies[cookie.Name] = cookie
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) register(name, email, pwd string) *httptest.ResponseRecorder {
	return c.postForm("/register", url.Values{"name": {name}, "email": {email}, "password": {pwd}})
}

func (c *client) login(email, pwd string) *httptest.ResponseRecorder {
	return c.postForm("/student-login", url.Values{"email": {email}, "password": {pwd}})
}

func (c *client) staffLogin(username, pwd string) *httptest.ResponseRecorder {
	return c.postForm("/staff-login", url.Values{"username": {username}, "password": {pwd}})
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
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
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, wantLocation, rec.Header().Get(echo.HeaderLocation))
}
