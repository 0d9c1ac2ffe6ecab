package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
)

// Backend endpoints, per the token auth wire contract.
const (
	tokenObtainPath  = "/api/token/"
	tokenRefreshPath = "/api/token/refresh/"
	registerPath     = "/api/users/register/"
	logoutPath       = "/api/users/logout/"
	currentUserPath  = "/api/users/me/"
)

// refreshLeeway is how close to expiry an access token may get before the
// manager refreshes it ahead of a request instead of letting it 401.
const refreshLeeway = 30 * time.Second

// CurrentUserKey is the cache key of the current-user entry. It has no
// staleness window: it stays cached until logout or a fresh login.
var CurrentUserKey = cache.DetailKey("users", "me")

// ErrNotAuthenticated is returned when an operation requires a session and
// no access token is held.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// User is the authenticated account's canonical representation.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterInput is the payload for account registration.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type revokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Manager owns the login/register/logout/current-user flows and enforces
// the retry-once-on-401 policy for every request passing through it.
type Manager struct {
	client *httpclient.Client
	tokens TokenStore
	store  *cache.Store
	log    *logger.Logger
	sf     singleflight.Group
}

// Manager is the Doer entity resources issue their requests through.
var _ httpclient.Doer = (*Manager)(nil)

// NewManager creates a session manager. The client should be constructed
// with the same token store as its TokenSource so requests pick up the
// credential the manager maintains.
func NewManager(client *httpclient.Client, tokens TokenStore, store *cache.Store, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		client: client,
		tokens: tokens,
		store:  store,
		log:    log.WithComponent("session"),
	}
}

// Do executes a request, transparently refreshing the access token and
// retrying exactly once when an authed request comes back 401. If the
// refresh itself fails, local session state is cleared and the original
// 401 surfaces to the caller.
func (m *Manager) Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
	// A reader body drains on the first send; buffer it so the retry can
	// replay the identical request.
	if r, ok := req.Body.(io.Reader); ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, httpclient.NewRequestError(fmt.Sprintf("read request body: %v", err))
		}
		req.Body = data
	}

	if !req.SkipAuth {
		m.refreshIfExpiring(ctx)
	}

	resp, err := m.client.Do(ctx, req)
	if err == nil || req.SkipAuth || statusOf(err) != http.StatusUnauthorized {
		return resp, err
	}

	if rerr := m.refresh(ctx); rerr != nil {
		m.log.Warn("token refresh failed, clearing session", logger.ErrorFields("refresh", rerr))
		m.clearLocal()
		return resp, err
	}
	return m.client.Do(ctx, req)
}

// Login obtains a token pair for the credentials, persists it, and marks
// the current-user entry for refetch. On failure any existing session is
// left untouched and the typed error propagates so the UI can map
// field-level validation messages.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := httpclient.Post[tokenPair](m.client, ctx, tokenObtainPath,
		credentials{Username: username, Password: password}, httpclient.WithSkipAuth())
	if err != nil {
		return err
	}

	m.tokens.Set(resp.Data.Access, resp.Data.Refresh)
	m.store.Invalidate(CurrentUserKey)
	m.log.Info("logged in", logger.Fields("username", username))
	return nil
}

// Register creates a new account. It does not authenticate it.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (User, error) {
	resp, err := httpclient.Post[User](m.client, ctx, registerPath, input, httpclient.WithSkipAuth())
	if err != nil {
		return User{}, err
	}
	return resp.Data, nil
}

// CurrentUser returns the authenticated user, served from cache when
// available. The entry has no staleness window: it lives until logout or a
// fresh login invalidates it.
func (m *Manager) CurrentUser(ctx context.Context) (User, error) {
	if _, ok := m.tokens.Access(); !ok {
		return User{}, ErrNotAuthenticated
	}

	value, err := m.store.ReadWait(ctx, CurrentUserKey, func(ctx context.Context) (any, error) {
		resp, err := httpclient.Get[User](m, ctx, currentUserPath)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, cache.WithStaleAfter(0))
	if err != nil {
		return User{}, err
	}
	return value.(User), nil
}

// IsAuthenticated reports whether a current user is known.
func (m *Manager) IsAuthenticated() bool {
	ent, ok := m.store.Peek(CurrentUserKey)
	return ok && ent.HasValue()
}

// Logout revokes the refresh token server-side on a best-effort basis, then
// unconditionally clears local tokens and the current-user entry. A failed
// revocation is absorbed: logout must be locally irreversible even under
// network failure.
func (m *Manager) Logout(ctx context.Context) {
	if refresh, ok := m.tokens.Refresh(); ok {
		_, err := m.client.Do(ctx, httpclient.Request{
			Method: http.MethodPost,
			Path:   logoutPath,
			Body:   revokeRequest{RefreshToken: refresh},
		})
		if err != nil {
			m.log.Warn("token revocation failed, clearing local session anyway",
				logger.ErrorFields("logout", err))
		}
	}
	m.clearLocal()
	m.log.Info("logged out")
}

// refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single refresh request.
func (m *Manager) refresh(ctx context.Context) error {
	_, err, _ := m.sf.Do("refresh", func() (any, error) {
		refresh, ok := m.tokens.Refresh()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		resp, err := httpclient.Post[tokenPair](m.client, ctx, tokenRefreshPath,
			refreshRequest{Refresh: refresh}, httpclient.WithSkipAuth())
		if err != nil {
			return nil, err
		}
		// The backend does not rotate refresh tokens; keep the current one.
		m.tokens.Set(resp.Data.Access, refresh)
		m.log.Debug("access token refreshed")
		return nil, nil
	})
	return err
}

// refreshIfExpiring refreshes ahead of a request when the access token is a
// JWT about to expire. Best effort: on failure the request proceeds and the
// reactive 401 path takes over.
func (m *Manager) refreshIfExpiring(ctx context.Context) {
	access, ok := m.tokens.Access()
	if !ok {
		return
	}
	exp, ok := tokenExpiry(access)
	if !ok || time.Until(exp) > refreshLeeway {
		return
	}
	if _, ok := m.tokens.Refresh(); !ok {
		return
	}
	_ = m.refresh(ctx)
}

// clearLocal applies forced-logout semantics to local state only.
func (m *Manager) clearLocal() {
	m.tokens.Clear()
	m.store.Remove(CurrentUserKey)
}

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying it. Verification is the server's job; the client only wants to
// know when a refresh is due. Opaque non-JWT tokens report no expiry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := gojwt.MapClaims{}
	parser := gojwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// statusOf extracts the HTTP status code from a typed transport error.
func statusOf(err error) int {
	var e *httpclient.Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
