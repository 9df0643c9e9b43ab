package handler

import (
	"net/http"

	"github.com/g1000/portal/internal/domain"
	"github.com/g1000/portal/internal/service"
)

// StudentHandler handles the student-facing application and profile
// endpoints.
type StudentHandler struct {
	lifecycle *service.LifecycleService
	projects  *service.ProjectService
	profiles  *service.ProfileService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(lifecycle *service.LifecycleService, projects *service.ProjectService, profiles *service.ProfileService) *StudentHandler {
	return &StudentHandler{lifecycle: lifecycle, projects: projects, profiles: profiles}
}

// Apply submits an application to an opportunity.
func (h *StudentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body struct {
		CoverNote string `json:"coverNote" validate:"required"`
	}
	if err := DecodeAndValidate(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	app, err := h.lifecycle.Submit(r.Context(), projectID, identity.UserID, body.CoverNote)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

// Withdraw pulls the caller's application out of contention.
func (h *StudentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}
	appID, err := pathID(r, "appID")
	if err != nil {
		WriteError(w, err)
		return
	}

	app, err := h.lifecycle.Withdraw(r.Context(), appID, identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// ListApplications retrieves the caller's applications.
func (h *StudentHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	apps, err := h.projects.StudentApplications(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}

// Profile retrieves the caller's student profile.
func (h *StudentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.StudentProfile(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// SaveProfile creates or replaces the caller's student profile, including
// the weekly availability that feeds the advisory interview check.
func (h *StudentHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var in service.StudentProfileInput
	if err := DecodeAndValidate(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.profiles.SaveStudentProfile(r.Context(), identity.UserID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
