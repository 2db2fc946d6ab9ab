// Package httpapi serves the account endpoints next to the WebSocket
// gateway: signup, login, user listing and a liveness probe.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	List(ctx context.Context) ([]models.User, error)
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type handler struct {
	accounts Accounts
	validate *validator.Validate
	log      logging.Logger
}

// NewRouter mounts the account API and the WebSocket endpoint on one router.
func NewRouter(accounts Accounts, ws http.Handler, log logging.Logger) *mux.Router {
	h := &handler{accounts: accounts, validate: validator.New(), log: log}

	r := mux.NewRouter()
	r.HandleFunc("/up", h.up).Methods(http.MethodGet)
	r.HandleFunc("/users/signup", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	if ws != nil {
		r.Handle("/ws", ws).Methods(http.MethodGet)
	}
	return r
}

func (h *handler) up(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Message: "User with this name or email already exists"})
			return
		}
		h.log.Error(r.Context(), "signup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
		return
	}

	h.log.Info(r.Context(), "user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, UserResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Incorrect email or password"})
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token})
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "list users failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
		return
	}

	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, UserResponse{ID: u.ID, Name: u.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads and validates a JSON body, answering 400 on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
