package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"puppytalk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	sessions map[string]uint
	err      error
	calls    int
}

func (s *stubResolver) Resolve(_ context.Context, token string) (uint, bool, error) {
	s.calls++
	if s.err != nil {
		return 0, false, s.err
	}
	uid, ok := s.sessions[token]
	return uid, ok, nil
}

func TestAuthRequired(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]uint{"good-token": 123}}

	app := newTestApp()
	app.Get("/test", AuthRequired(resolver), func(c *fiber.Ctx) error {
		uid, _ := UserID(c)
		ctxUID, _ := c.UserContext().Value(UserIDKey).(uint)
		return c.JSON(fiber.Map{"userID": uid, "ctxUserID": ctxUID})
	})

	tests := []struct {
		name           string
		cookie         string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "good-token", http.StatusOK, 123},
		{"Missing Cookie", "", http.StatusUnauthorized, 0},
		{"Unknown Token", "expired-or-revoked", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				var body map[string]uint
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["ctxUserID"])
			} else {
				var env models.Envelope
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
				assert.Equal(t, models.CodeUnauthorized, env.Code)
			}
		})
	}
}

func TestAuthRequired_RereadsEveryRequest(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]uint{"tok": 9}}
	app := newTestApp()
	app.Get("/test", AuthRequired(resolver), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, send())
	delete(resolver.sessions, "tok")
	assert.Equal(t, http.StatusUnauthorized, send())
	assert.Equal(t, 2, resolver.calls)
}

func TestAuthRequired_StoreFailure(t *testing.T) {
	resolver := &stubResolver{err: models.NewDBError(errors.New("db down"))}
	app := newTestApp()
	app.Get("/test", AuthRequired(resolver), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestOptionalAuth(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]uint{"tok": 5}}
	app := newTestApp()
	app.Get("/test", OptionalAuth(resolver), func(c *fiber.Ctx) error {
		uid, ok := UserID(c)
		return c.JSON(fiber.Map{"userID": uid, "ok": ok})
	})

	for _, tc := range []struct {
		cookie string
		uid    float64
		ok     bool
	}{
		{"tok", 5, true},
		{"", 0, false},
		{"nope", 0, false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, tc.uid, body["userID"])
		assert.Equal(t, tc.ok, body["ok"])
	}
}
