package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"rocketlearn/internal/models"
	"rocketlearn/internal/notify"
	"rocketlearn/internal/security"
	"rocketlearn/internal/session"
	"rocketlearn/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	store  *session.Store
	issuer *security.TokenIssuer
	mailer *notify.Mailer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *session.Store, issuer *security.TokenIssuer, mailer *notify.Mailer) *AuthHandler {
	return &AuthHandler{
		store:  store,
		issuer: issuer,
		mailer: mailer,
	}
}

// Login authenticates against the user directory and makes the matched
// user the active session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "User directory unavailable", "Login lookup failed", err)
		return
	}
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
		return
	}

	h.setSessionCookie(w, r, user.ID)
	respondJSON(w, http.StatusOK, user)
}

// Register creates a new account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Name            string `json:"name"`
		Role            string `json:"role"`
		ParentID        string `json:"parentId"`
		Age             int    `json:"age"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	form := validation.RegisterForm{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
		Role:            req.Role,
		ParentID:        req.ParentID,
		Age:             req.Age,
	}
	if err := validation.ValidateRegistration(form); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	user, err := h.store.Register(session.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.Role(req.Role),
		ParentID: req.ParentID,
		Age:      req.Age,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Registration failed", "Register failed", err)
		return
	}

	if user.Email != "" {
		go func(email, name string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.mailer.SendWelcome(ctx, email, name); err != nil {
				log.Printf("Welcome email to %s failed: %v", email, err)
			}
		}(user.Email, user.Name)
	}

	h.setSessionCookie(w, r, user.ID)
	respondJSON(w, http.StatusCreated, user)
}

// Switch changes the active session to another profile, typically a
// parent opening a child account. Unknown ids leave the session alone.
func (h *AuthHandler) Switch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "User id is required", "", nil)
		return
	}

	if err := h.store.SwitchUser(r.Context(), id); err != nil {
		respondWithError(w, http.StatusBadGateway, "User directory unavailable", "Switch lookup failed", err)
		return
	}

	user := h.store.CurrentUser()
	if user == nil || user.ID != id {
		respondWithError(w, http.StatusNotFound, "User not found", "", nil)
		return
	}

	h.setSessionCookie(w, r, user.ID)
	respondJSON(w, http.StatusOK, user)
}

// Logout clears the session unconditionally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	http.SetCookie(w, security.DeleteSessionCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the active session's user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial update to the active user. Supplied
// fields replace the current values wholesale, including nested
// objects like preferences and progress.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}

	var req struct {
		Email        *string              `json:"email"`
		Name         *string              `json:"name"`
		Subscription *string              `json:"subscription"`
		Age          *int                 `json:"age"`
		Children     *[]string            `json:"children"`
		Preferences  *models.Preferences  `json:"preferences"`
		Progress     *models.UserProgress `json:"progress"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	update := session.UserUpdate{
		Email:       req.Email,
		Name:        req.Name,
		Age:         req.Age,
		Children:    req.Children,
		Preferences: req.Preferences,
		Progress:    req.Progress,
	}

	var upgradedTo models.Tier
	if req.Subscription != nil {
		tier := models.ParseTier(*req.Subscription)
		update.Subscription = &tier
		if tier.Rank() > user.EffectiveTier().Rank() {
			upgradedTo = tier
		}
	}

	h.store.Update(update)
	updated := h.store.CurrentUser()

	if upgradedTo != "" && updated != nil && updated.Email != "" {
		go func(email, name, plan string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.mailer.SendUpgrade(ctx, email, name, plan); err != nil {
				log.Printf("Upgrade email to %s failed: %v", email, err)
			}
		}(updated.Email, updated.Name, string(upgradedTo))
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, userID string) {
	token, err := h.issuer.Issue(userID)
	if err != nil {
		// The in-memory session is already active; the client just
		// won't have a cookie. Log and move on.
		log.Printf("Error issuing session token: %v", err)
		return
	}
	http.SetCookie(w, security.SessionCookie(r, token, time.Now().Add(h.issuer.TTL())))
}
