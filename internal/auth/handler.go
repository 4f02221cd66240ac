package auth

import (
	"errors"
	"net/http"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/httputil"
	"bread-calculator/internal/logging"
	"bread-calculator/internal/metrics"
	"bread-calculator/internal/models"
	"bread-calculator/internal/storage"
	"bread-calculator/internal/validation"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

const invalidCredentials = "Invalid username or password"

func RegisterHandler(store *storage.Store, hasher *PasswordHasher, tokens *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			metrics.RecordAuthAttempt("register", false)
			httputil.WriteError(w, r, err)
			return
		}
		if err := validation.NewUser(req.Username, req.Email, req.Password); err != nil {
			metrics.RecordAuthAttempt("register", false)
			httputil.WriteError(w, r, err)
			return
		}

		hash, err := hasher.Hash(req.Password)
		if err != nil {
			metrics.RecordAuthAttempt("register", false)
			if errors.Is(err, ErrPasswordTooLong) {
				httputil.WriteError(w, r, apperr.Validation("password: must be at most 72 bytes"))
				return
			}
			httputil.WriteError(w, r, apperr.Internal("hash password", err))
			return
		}

		user, err := store.CreateUser(r.Context(), req.Username, req.Email, hash)
		if err != nil {
			metrics.RecordAuthAttempt("register", false)
			httputil.WriteError(w, r, err)
			return
		}

		logging.FromContext(r.Context()).WithField("user_id", user.ID).Info("user registered")
		metrics.RecordAuthAttempt("register", true)
		writeToken(w, r, tokens, user)
	}
}

func LoginHandler(store *storage.Store, hasher *PasswordHasher, tokens *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			metrics.RecordAuthAttempt("login", false)
			httputil.WriteError(w, r, err)
			return
		}
		if req.Username == "" || req.Password == "" {
			metrics.RecordAuthAttempt("login", false)
			httputil.WriteError(w, r, apperr.Validation("username and password are required"))
			return
		}

		user, err := store.FindUserByUsername(r.Context(), req.Username)
		if err != nil {
			metrics.RecordAuthAttempt("login", false)
			if apperr.Is(err, apperr.KindNotFound) {
				hasher.VerifyUnknown(req.Password)
				httputil.WriteError(w, r, apperr.Authentication(invalidCredentials))
				return
			}
			httputil.WriteError(w, r, err)
			return
		}
		if !hasher.Verify(req.Password, user.PasswordHash) {
			metrics.RecordAuthAttempt("login", false)
			httputil.WriteError(w, r, apperr.Authentication(invalidCredentials))
			return
		}

		metrics.RecordAuthAttempt("login", true)
		writeToken(w, r, tokens, user)
	}
}

func writeToken(w http.ResponseWriter, r *http.Request, tokens *TokenManager, user *models.User) {
	token, err := tokens.Issue(user)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("issue token", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: TokenType})
}
