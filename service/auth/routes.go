package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/findash/findash-server/cmd/models"
	"github.com/findash/findash-server/cmd/utils"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all auth-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	authRouter := router.PathPrefix("/auth").Subrouter()

	authRouter.HandleFunc("/register", h.handleRegister).Methods("POST")
	authRouter.HandleFunc("/login", h.handleLogin).Methods("POST")
	authRouter.HandleFunc("/verify", utils.AuthMiddleware(h.handleVerify)).Methods("GET")
	authRouter.HandleFunc("/logout", utils.AuthMiddleware(h.handleLogout)).Methods("POST")
}

// normalizeEmail lowercases and trims so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password, name string) string {
	if !emailPattern.MatchString(email) {
		return "Please provide a valid email"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters long"
	}
	if len(strings.TrimSpace(name)) < 2 {
		return "Name must be at least 2 characters long"
	}
	return ""
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := normalizeEmail(registerRequest.Email)
	name := strings.TrimSpace(registerRequest.Name)

	if msg := validateRegistration(email, registerRequest.Password, name); msg != "" {
		utils.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	var existing models.User
	result := h.db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		utils.WriteError(w, http.StatusBadRequest, "User with this email already exists")
		return
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error during registration")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcryptCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error during registration")
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
	}
	if err := h.db.Create(&user).Error; err != nil {
		// Unique index race: another request registered the same email first.
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			utils.WriteError(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error during registration")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "User registered successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := normalizeEmail(loginRequest.Email)
	if !emailPattern.MatchString(email) {
		utils.WriteError(w, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if loginRequest.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Password is required")
		return
	}

	// Unknown email and wrong password must be indistinguishable to the
	// caller, so both paths share one message.
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Login successful",
		"token":   token,
		"user":    user.Public(),
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims, err := utils.GetUserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Access token required")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"valid":  true,
		"user": map[string]interface{}{
			"userId": claims.UserID,
			"email":  claims.Email,
			"name":   claims.Name,
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Tokens are not tracked server-side; the client discards its copy.
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Logged out successfully",
	})
}
