// Beacon - Service Template with Structured Logging and Request Observability
// Copyright 2026 Beacon Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beaconhq/beacon

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/beaconhq/beacon/internal/database"
	"github.com/beaconhq/beacon/internal/logging"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

var validate = validator.New()

type userRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"required,email"`
}

type userListResponse struct {
	Users []*database.User `json:"users"`
	Total int64            `json:"total"`
}

func decodeUserRequest(w http.ResponseWriter, r *http.Request) (*userRequest, bool) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", "invalid_body")
		return nil, false
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "Validation failed: "+err.Error(), "validation_error")
		return nil, false
	}
	return &req, true
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "Invalid user ID", "invalid_id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			writeError(w, r, http.StatusConflict, "Email already registered", "duplicate_email")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to create user")
		writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		return
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("user created")
	writeJSON(w, r, http.StatusCreated, user)
}

func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.db.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "User not found", "not_found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to get user")
		writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to list users")
		writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		return
	}
	total, err := h.db.CountUsers(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to count users")
		writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		return
	}

	writeJSON(w, r, http.StatusOK, userListResponse{Users: users, Total: total})
}

func (h *Handlers) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	req, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	user, err := h.db.UpdateUser(r.Context(), id, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "User not found", "not_found")
		case errors.Is(err, database.ErrDuplicateEmail):
			writeError(w, r, http.StatusConflict, "Email already registered", "duplicate_email")
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("failed to update user")
			writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		}
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "User not found", "not_found")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to delete user")
		writeError(w, r, http.StatusInternalServerError, "Internal server error", "internal_error")
		return
	}

	logging.Ctx(r.Context()).Info().Int64("user_id", id).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
