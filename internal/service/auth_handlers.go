package service

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/internal/store"
)

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID    string      `json:"id"`
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Please fill all fields")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error while registering user")
		return
	}

	user := &model.User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		ProfileImageURL: req.ProfileImageURL,
		PasswordHash:    string(hash),
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Error while registering user")
		return
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error while registering user")
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: user.ID, User: user, Token: token})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Please fill all fields")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Error while logging in")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error while logging in")
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{ID: user.ID, User: user, Token: token})
}

func (s *Service) handleGetUserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized, no token exists")
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleLogout revokes the presented token's jti, even when the token is
// already expired, and clears the session cookie.
func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		claims, err := s.issuer.Verify(token)
		if err != nil {
			claims, err = s.issuer.DecodeUnverified(token)
		}
		if err == nil && claims.ID != "" {
			s.revocations.Revoke(claims.ID)
		}
	}

	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Hour.Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
