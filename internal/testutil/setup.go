package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/quartfeed/internal/cache"
	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/pkg/config"
	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

func init() {
	security.PasswordCost = bcrypt.MinCost
}

// SetupTestDB opens a private in-memory SQLite database with every table
// migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := config.OpenSQL(config.DatabaseConfig{Driver: config.DriverSQLite, URL: dsn, MaxOpen: 1})
	require.NoError(t, err, "SetupTestDB: Open")

	require.NoError(t, models.AutoMigrate(db, models.FeedModels...), "SetupTestDB: AutoMigrate feed")
	require.NoError(t, models.AutoMigrate(db, models.CounterModels...), "SetupTestDB: AutoMigrate counter")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SetupTestCache returns a local cache closed at the end of the test.
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{})
	require.NoError(t, err, "SetupTestCache")
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestConfig is a valid configuration pointing at SQLite.
func TestConfig() *config.Config {
	return &config.Config{
		Port:     "0",
		Env:      "test",
		LogLevel: "error",
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			URL:    "file::memory:",
		},
		CounterStore:      config.CounterStoreSQL,
		SessionCookieName: "feed_session",
		SessionTTL:        time.Hour,
		CSRFEnabled:       true,
		JWTSecret:         "test_secret_key_minimum_32_chars",
		JWTTTL:            time.Hour,
		LoginRateLimit:    1000,
	}
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// Client drives an echo instance like a browser: it keeps cookies between
// requests and does not follow redirects.
type Client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func NewClient(t *testing.T, e *echo.Echo) *Client {
	return &Client{t: t, e: e, cookies: make(map[string]*http.Cookie)}
}

func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *Client) Get(path string) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm submits form values as application/x-www-form-urlencoded.
func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.Do(req)
}

// CSRFToken loads page and extracts the csrf_token hidden field.
func (c *Client) CSRFToken(page string) string {
	c.t.Helper()
	rec := c.Get(page)
	m := csrfPattern.FindStringSubmatch(rec.Body.String())
	require.Len(c.t, m, 2, "no csrf token on %s", page)
	return m[1]
}

// Credentials builds a register/login form.
func Credentials(username, password, csrf string) url.Values {
	return url.Values{
		"username":   {username},
		"password":   {password},
		"csrf_token": {csrf},
	}
}

// Register creates an account through the HTML form.
func (c *Client) Register(username, password string) *httptest.ResponseRecorder {
	return c.PostForm("/register", Credentials(username, password, c.CSRFToken("/register")))
}

// Login signs in through the HTML form.
func (c *Client) Login(username, password string) *httptest.ResponseRecorder {
	return c.PostForm("/login", Credentials(username, password, c.CSRFToken("/login")))
}
