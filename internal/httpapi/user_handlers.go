// ABOUTME: User endpoints: own profile and the admin-only user listing
// ABOUTME: Handlers read the principal attached by the auth gate

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/fernworks/authgate/internal/auth"
)

// handleMe returns the filtered profile of the authenticated principal.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := auth.MustPrincipal(r.Context())

	writeJSON(w, http.StatusOK, profileResponse{
		Status: "success",
		Data:   userData{User: filterUser(user)},
	})
}

// handleListUsers returns a page of users. Admin-only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	users, err := s.users.ListUsers(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("listing users", "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	filtered := make([]userResponse, len(users))
	for i, u := range users {
		filtered[i] = filterUser(u)
	}

	writeJSON(w, http.StatusOK, userListResponse{
		Status:  "success",
		Results: len(filtered),
		Users:   filtered,
	})
}

// queryInt parses a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
