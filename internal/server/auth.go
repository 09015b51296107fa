package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minji/book-fairy/internal/config"
)

// AdminCredentials holds the single administrative account permitted to
// modify holdings. The server carries no user database; one operator
// account loaded from the environment is enough for a school library.
type AdminCredentials struct {
	Username     string
	PasswordHash string // bcrypt hash produced by `book_fairy hash-password`
}

// LoadAdminCredentials reads ADMIN_USERNAME and ADMIN_PASSWORD_HASH from
// the environment.
func LoadAdminCredentials() (*AdminCredentials, error) {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		return nil, fmt.Errorf("ADMIN_USERNAME environment variable is required")
	}
	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is required")
	}
	return &AdminCredentials{Username: username, PasswordHash: hash}, nil
}

// ID returns a stable identifier for the admin account, used as the JWT
// subject.
func (c *AdminCredentials) ID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("book-fairy/admin/"+c.Username))
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	credentials *AdminCredentials
	passwords   *config.PasswordConfig
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(credentials *AdminCredentials, passwords *config.PasswordConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		passwords:   passwords,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// LoginRequest is the request body for /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login handles admin login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	// Check both factors before answering so username probing and password
	// probing take the same path.
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.credentials.Username)) == 1
	passwordOK := h.passwords.VerifyPassword(req.Password, h.credentials.PasswordHash)
	if !usernameOK || !passwordOK {
		err := &ErrInvalidCredentials{}
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	token, err := h.jwtService.GenerateToken(h.credentials.ID())
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := LoginResponse{
		Token:    token,
		Username: h.credentials.Username,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		return
	}
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
