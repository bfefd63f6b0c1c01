// ABOUTME: Session endpoints: register, login, and logout
// ABOUTME: Thin orchestration over the hasher, token codec, and user store

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fernworks/authgate/internal/auth"
	"github.com/fernworks/authgate/internal/store"
)

// handleRegister creates a new account. Registration always produces a
// regular user; admins are seeded out-of-band.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         store.RoleUser,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			writeFail(w, http.StatusBadRequest, msgEmailExists)
			return
		}
		s.logger.Error("creating user", "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, profileResponse{
		Status: "success",
		Data:   userData{User: filterUser(user)},
	})
}

// handleLogin verifies credentials and issues a session token. The token is
// returned both in the body and as an HTTP-only cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a bcrypt comparison so the unknown-email path is not
			// distinguishable by timing, then answer exactly as a wrong
			// password would.
			auth.DummyCompare(req.Password)
			writeFail(w, http.StatusUnauthorized, msgWrongCredentials)
			return
		}
		s.logger.Error("looking up user", "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("verifying password", "user", user.ID, "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if !ok {
		writeFail(w, http.StatusUnauthorized, msgWrongCredentials)
		return
	}

	token, err := s.codec.Issue(user.ID, s.tokenLifetime)
	if err != nil {
		s.logger.Error("issuing token", "user", user.ID, "error", err)
		writeFail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenLifetime.Seconds()),
		HttpOnly: true,
	})

	s.logger.Info("login successful", "user", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{Status: "success", Token: token})
}

// handleLogout overwrites the session cookie with an immediately-expired one.
// Invalidation is purely client-side: a token copied elsewhere stays valid
// until its natural expiry.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}
