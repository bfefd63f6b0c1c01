// ABOUTME: HTTP middleware gating routes on token validity and role allow-sets
// ABOUTME: Extracts the token from cookie or bearer header and attaches the principal

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fernworks/authgate/internal/store"
)

// TokenCookieName is the name of the session token cookie.
const TokenCookieName = "token"

// DefaultLookupTimeout bounds the principal-resolution call. A hanging
// directory lookup must not hang the request indefinitely.
const DefaultLookupTimeout = 5 * time.Second

// Rejection messages returned to clients.
const (
	MsgTokenNotProvided   = "You are not logged in, please provide a token"
	MsgInvalidToken       = "Authentication token is invalid or expired"
	MsgUserNoLongerExists = "The user belonging to this token no longer exists"
	MsgPermissionDenied   = "You are not allowed to perform this action"
	MsgInternalError      = "Something went wrong, please try again later"
)

// UserDirectory is the subset of the user store the gate needs: a single
// lookup by the subject id decoded from a verified token.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
}

// Gate authenticates requests and enforces per-route role allow-sets.
// It holds only immutable, process-wide collaborators and is safe for
// concurrent use across requests.
type Gate struct {
	users         UserDirectory
	verifier      TokenVerifier
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// NewGate creates a Gate. A lookupTimeout of zero selects DefaultLookupTimeout.
func NewGate(users UserDirectory, verifier TokenVerifier, logger *slog.Logger, lookupTimeout time.Duration) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Gate{
		users:         users,
		verifier:      verifier,
		logger:        logger.With("component", "auth"),
		lookupTimeout: lookupTimeout,
	}
}

// Require returns middleware admitting only principals whose role is in the
// allow-set. Per request: extract token, verify, resolve the user, check the
// role, attach the principal. Every rejection short-circuits before the
// wrapped handler; exactly one directory lookup happens per request.
func (g *Gate) Require(allowed store.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				writeFail(w, http.StatusUnauthorized, MsgTokenNotProvided)
				return
			}

			subject, err := g.verifier.Verify(token)
			if err != nil {
				writeFail(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), g.lookupTimeout)
			defer cancel()

			user, err := g.users.GetUserByID(ctx, subject)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Cryptographically valid token for a deleted account
					writeFail(w, http.StatusUnauthorized, MsgUserNoLongerExists)
					return
				}
				g.logger.Error("principal lookup failed", "subject", subject, "error", err)
				writeFail(w, http.StatusInternalServerError, MsgInternalError)
				return
			}

			if !allowed.Contains(user.Role) {
				writeFail(w, http.StatusForbidden, MsgPermissionDenied)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// extractToken pulls the session token from the request: the token cookie
// first, then the Authorization header.
func extractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// bearerToken extracts a bearer token from the Authorization header value.
// The prefix is validated explicitly; a header that isn't exactly
// "Bearer <token>" yields no token.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// failResponse is the JSON body for every gate rejection.
type failResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(failResponse{Status: "fail", Message: message})
}
