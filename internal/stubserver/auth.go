package stubserver

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shopfront/internal/api"
	"shopfront/internal/domain"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not create account.")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}

	user := domain.User{
		ID:        s.nextUserID,
		Email:     req.Email,
		FullName:  req.FullName,
		CreatedAt: nowStamp(),
		UpdatedAt: nowStamp(),
	}
	s.nextUserID++
	s.accounts[req.Email] = &account{user: user, passwordHash: hash}
	token := s.issueToken(user.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, api.AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   tokenLifetime,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	acct, exists := s.accounts[email]
	s.mu.Unlock()

	if !exists || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	s.mu.Lock()
	token := s.issueToken(acct.user.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AuthResponse{
		User:        acct.user,
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresIn:   tokenLifetime,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := s.authenticate(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == userID {
			writeJSON(w, http.StatusOK, map[string]domain.User{"user": acct.user})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Authentication required.")
}
