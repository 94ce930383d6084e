package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/quartfeed/internal/cache"
	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	contextKey = "session"
	keyPrefix  = "session:"
	idBytes    = 32
)

type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager loads sessions from the cache on the way in and persists modified
// sessions on the way out.
type Manager struct {
	store cache.Cache
	cfg   Config
	log   *zap.Logger
}

func NewManager(store cache.Cache, cfg Config, log *zap.Logger) *Manager {
	return &Manager{store: store, cfg: cfg, log: log}
}

// Middleware attaches the request's session to the echo context.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := m.load(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session").SetInternal(err)
			}
			c.Set(contextKey, sess)

			c.Response().Before(func() {
				if err := m.save(c, sess); err != nil {
					m.log.Error("Failed to save session", zap.Error(err))
				}
			})

			return next(c)
		}
	}
}

// Regenerate moves sess to a new random id.
func (m *Manager) Regenerate(sess *Session) error {
	id, err := security.GenerateRandomToken(idBytes)
	if err != nil {
		return fmt.Errorf("failed to generate session id: %w", err)
	}
	sess.Regenerate(id)
	return nil
}

func (m *Manager) load(c echo.Context) (*Session, error) {
	cookie, err := c.Cookie(m.cfg.CookieName)
	if err == nil && cookie.Value != "" {
		raw, err := m.store.Get(c.Request().Context(), keyPrefix+cookie.Value)
		switch {
		case err == nil:
			sess := &Session{id: cookie.Value}
			if err := json.Unmarshal([]byte(raw), &sess.data); err == nil {
				return sess, nil
			}
			m.log.Warn("Discarding corrupt session")
		case !errors.Is(err, cache.ErrNotFound):
			return nil, err
		}
	}

	id, err := security.GenerateRandomToken(idBytes)
	if err != nil {
		return nil, err
	}
	return &Session{id: id}, nil
}

func (m *Manager) save(c echo.Context, sess *Session) error {
	if !sess.modified {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if sess.oldID != "" {
		if err := m.store.Del(ctx, keyPrefix+sess.oldID); err != nil {
			return err
		}
		sess.oldID = ""
	}

	raw, err := json.Marshal(sess.data)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, keyPrefix+sess.id, string(raw), m.cfg.TTL); err != nil {
		return err
	}
	sess.modified = false

	c.SetCookie(&http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get returns the session attached by Middleware, or nil outside of it.
func Get(c echo.Context) *Session {
	sess, _ := c.Get(contextKey).(*Session)
	return sess
}
