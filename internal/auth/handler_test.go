package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockAuthenticator) Exchange(ctx context.Context, code string) (*User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthenticator) LogoutURL(returnTo string) string {
	args := m.Called(returnTo)
	return args.String(0)
}

const frontend = "http://localhost:3000"

func newAuthMux(t *testing.T, provider Authenticator) (*http.ServeMux, *Sessions) {
	t.Helper()
	sessions, err := NewSessions("secret", time.Hour)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(provider, sessions, HandlerConfig{FrontendURL: frontend}).Register(mux)
	return mux, sessions
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandler_Login(t *testing.T) {
	t.Run("Redirects with a state cookie", func(t *testing.T) {
		p := new(MockAuthenticator)
		p.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://idp.example.com/authorize?state=x")
		mux, _ := newAuthMux(t, p)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://idp.example.com/authorize?state=x", w.Header().Get("Location"))

		state := findCookie(w, StateCookie)
		require.NotNil(t, state)
		assert.NotEmpty(t, state.Value)
		assert.True(t, state.HttpOnly)
		p.AssertCalled(t, "AuthCodeURL", state.Value)
	})

	t.Run("Disabled provider", func(t *testing.T) {
		mux, _ := newAuthMux(t, nil)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func callbackRequest(query, state string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: StateCookie, Value: state})
	}
	return req
}

func TestHandler_Callback(t *testing.T) {
	t.Run("Success sets the session and redirects home", func(t *testing.T) {
		p := new(MockAuthenticator)
		p.On("Exchange", mock.Anything, "abc").Return(&User{Sub: "auth0|1", Name: "Ada"}, nil)
		mux, sessions := newAuthMux(t, p)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, callbackRequest("state=s1&code=abc", "s1"))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, frontend, w.Header().Get("Location"))

		session := findCookie(w, SessionCookie)
		require.NotNil(t, session)
		u, err := sessions.Parse(session.Value)
		require.NoError(t, err)
		assert.Equal(t, "auth0|1", u.Sub)

		state := findCookie(w, StateCookie)
		require.NotNil(t, state)
		assert.True(t, state.MaxAge < 0)
	})

	t.Run("State mismatch", func(t *testing.T) {
		p := new(MockAuthenticator)
		mux, _ := newAuthMux(t, p)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, callbackRequest("state=forged&code=abc", "s1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		p.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
	})

	t.Run("Missing state cookie", func(t *testing.T) {
		mux, _ := newAuthMux(t, new(MockAuthenticator))

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, callbackRequest("state=s1&code=abc", ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing code", func(t *testing.T) {
		mux, _ := newAuthMux(t, new(MockAuthenticator))

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, callbackRequest("state=s1", "s1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Exchange failure", func(t *testing.T) {
		p := new(MockAuthenticator)
		p.On("Exchange", mock.Anything, "abc").Return(nil, errors.New("invalid_grant"))
		mux, _ := newAuthMux(t, p)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, callbackRequest("state=s1&code=abc", "s1"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, findCookie(w, SessionCookie))
	})
}

func TestHandler_Logout(t *testing.T) {
	t.Run("Provider logout", func(t *testing.T) {
		p := new(MockAuthenticator)
		p.On("LogoutURL", frontend).Return("https://idp.example.com/v2/logout")
		mux, _ := newAuthMux(t, p)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://idp.example.com/v2/logout", w.Header().Get("Location"))
		session := findCookie(w, SessionCookie)
		require.NotNil(t, session)
		assert.Empty(t, session.Value)
	})

	t.Run("Without provider goes home", func(t *testing.T) {
		mux, _ := newAuthMux(t, nil)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

		assert.Equal(t, frontend, w.Header().Get("Location"))
	})
}

func TestHandler_Me(t *testing.T) {
	mux, _ := newAuthMux(t, nil)

	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		var body meResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.IsAuthenticated)
		assert.Nil(t, body.User)
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(WithUser(req.Context(), &User{Sub: "auth0|1", Name: "Ada"}))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		var body meResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.IsAuthenticated)
		assert.Equal(t, "Ada", body.User.Name)
	})
}
