package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	sharedauth "docchat-backend/internal/shared/auth"
	"docchat-backend/internal/users"
)

func TestStateStoreConsumesOnce(t *testing.T) {
	store := newStateStore()
	store.put("abc", time.Now().Add(time.Minute))

	assert.True(t, store.consume("abc"))
	assert.False(t, store.consume("abc"))
	assert.False(t, store.consume("unknown"))
}

func TestStateStoreRejectsExpired(t *testing.T) {
	now := time.Now()
	store := newStateStore()
	store.now = func() time.Time { return now }
	store.put("old", now.Add(-time.Second))
	assert.False(t, store.consume("old"))
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://localhost:5173/auth/callback?next=%2Fdocs", "tok")
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "tok", u.Query().Get("token"))
	assert.Equal(t, "/docs", u.Query().Get("next"))

	_, err = appendToken("", "tok")
	assert.Error(t, err)
}

func newGoogleTestRouter(t *testing.T, userInfo string) (*gin.Engine, *users.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sharedauth.Configure("google-test-secret", 0)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(userInfo))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(provider.Close)

	accounts := users.NewService(users.NewMemoryRepo())
	svc := NewGoogleService("client", "secret", "http://localhost/api/auth/google/callback", "http://ui.local/welcome", accounts)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: provider.URL + "/auth", TokenURL: provider.URL + "/token"}
	svc.userInfoURL = provider.URL + "/userinfo"

	r := gin.New()
	svc.RegisterRoutes(r.Group("/api"))
	return r, accounts
}

func startGoogleLogin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	start := httptest.NewRecorder()
	r.ServeHTTP(start, httptest.NewRequest(http.MethodGet, "/api/auth/google/start", nil))
	require.Equal(t, http.StatusFound, start.Code)
	loc, err := url.Parse(start.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestGoogleCallbackSignsInUser(t *testing.T) {
	r, accounts := newGoogleTestRouter(t, `{"id":"123","email":"Ada@Example.com","verified_email":true,"name":"Ada"}`)
	state := startGoogleLogin(t, r)

	cb := httptest.NewRecorder()
	r.ServeHTTP(cb, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state="+state, nil))
	require.Equal(t, http.StatusFound, cb.Code, cb.Body.String())

	dest, err := url.Parse(cb.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "ui.local", dest.Host)
	claims, err := sharedauth.VerifyJWT(dest.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)

	user, err := accounts.GetByID(context.Background(), claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, users.ProviderGoogle, user.Provider)

	replay := httptest.NewRecorder()
	r.ServeHTTP(replay, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state="+state, nil))
	assert.Equal(t, http.StatusBadRequest, replay.Code)
}

func TestGoogleCallbackRejectsUnverifiedEmail(t *testing.T) {
	r, accounts := newGoogleTestRouter(t, `{"id":"123","email":"ada@example.com","verified_email":false,"name":"Ada"}`)
	_, err := accounts.Register(context.Background(), "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	state := startGoogleLogin(t, r)

	cb := httptest.NewRecorder()
	r.ServeHTTP(cb, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state="+state, nil))
	assert.Equal(t, http.StatusForbidden, cb.Code)
	assert.Empty(t, cb.Header().Get("Location"))
	assert.Contains(t, cb.Body.String(), "Google email is not verified")

	session, err := accounts.Login(context.Background(), "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, users.ProviderPassword, session.User.Provider)
}

func TestGoogleStartNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewGoogleService("", "", "", "", nil)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/start", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
