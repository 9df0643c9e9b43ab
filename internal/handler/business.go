package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/g1000/portal/internal/domain"
	"github.com/g1000/portal/internal/service"
)

// BusinessHandler handles the owner-facing project and application
// endpoints.
type BusinessHandler struct {
	projects  *service.ProjectService
	lifecycle *service.LifecycleService
	profiles  *service.ProfileService
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(projects *service.ProjectService, lifecycle *service.LifecycleService, profiles *service.ProfileService) *BusinessHandler {
	return &BusinessHandler{projects: projects, lifecycle: lifecycle, profiles: profiles}
}

// CreateProject posts a new project.
func (h *BusinessHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var in service.ProjectInput
	if err := DecodeAndValidate(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), identity.UserID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, project)
}

// UpdateProject edits one of the caller's projects.
func (h *BusinessHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
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

	var in service.ProjectInput
	if err := DecodeAndValidate(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), identity.UserID, projectID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

// ListProjects retrieves the caller's projects.
func (h *BusinessHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	projects, err := h.projects.ListOwned(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

// ListApplications retrieves the applications on one of the caller's
// projects.
func (h *BusinessHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
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

	apps, err := h.projects.Applications(r.Context(), identity.UserID, projectID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}

// Accept selects the application, closes the project, and bulk-rejects the
// competition.
func (h *BusinessHandler) Accept(w http.ResponseWriter, r *http.Request) {
	identity, projectID, appID, err := ownedPathIDs(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	// Body is optional on accept.
	_ = decodeOptional(r, &body)

	app, err := h.lifecycle.Accept(r.Context(), projectID, appID, identity.UserID, body.Message)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// Reject declines a pending application.
func (h *BusinessHandler) Reject(w http.ResponseWriter, r *http.Request) {
	identity, projectID, appID, err := ownedPathIDs(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body struct {
		Reason *string `json:"reason"`
	}
	_ = decodeOptional(r, &body)

	app, err := h.lifecycle.Reject(r.Context(), projectID, appID, identity.UserID, body.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// UndoReject reverts a rejection back to under review.
func (h *BusinessHandler) UndoReject(w http.ResponseWriter, r *http.Request) {
	identity, projectID, appID, err := ownedPathIDs(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	app, err := h.lifecycle.UndoReject(r.Context(), projectID, appID, identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

type interviewRequest struct {
	MeetingDateTime time.Time `json:"meetingDateTime" validate:"required"`
	MeetingLink     *string   `json:"meetingLink" validate:"omitempty,url"`
	Message         *string   `json:"message"`
}

// interviewResponse pairs the updated application with the advisory
// availability warning, when any.
type interviewResponse struct {
	Application         *domain.Application `json:"application"`
	AvailabilityWarning *string             `json:"availability_warning,omitempty"`
}

// Invite schedules an interview for the application.
func (h *BusinessHandler) Invite(w http.ResponseWriter, r *http.Request) {
	identity, projectID, appID, err := ownedPathIDs(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body interviewRequest
	if err := DecodeAndValidate(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	app, warning, err := h.lifecycle.InviteToInterview(r.Context(),
		projectID, appID, identity.UserID, body.MeetingDateTime, body.MeetingLink, body.Message)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, interviewResponse{Application: app, AvailabilityWarning: warning})
}

// Reschedule overwrites the interview meeting details.
func (h *BusinessHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	identity, projectID, appID, err := ownedPathIDs(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var body interviewRequest
	if err := DecodeAndValidate(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	app, warning, err := h.lifecycle.RescheduleInterview(r.Context(),
		projectID, appID, identity.UserID, body.MeetingDateTime, body.MeetingLink, body.Message)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, interviewResponse{Application: app, AvailabilityWarning: warning})
}

// Profile retrieves the caller's company profile.
func (h *BusinessHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.OwnerProfile(r.Context(), identity.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// SaveProfile creates or replaces the caller's company profile.
func (h *BusinessHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var in service.OwnerProfileInput
	if err := DecodeAndValidate(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.profiles.SaveOwnerProfile(r.Context(), identity.UserID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// pathID parses a uuid path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

// ownedPathIDs extracts the caller identity plus the projectID/appID pair
// shared by the lifecycle routes.
func ownedPathIDs(r *http.Request) (domain.Identity, uuid.UUID, uuid.UUID, error) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		return domain.Identity{}, uuid.Nil, uuid.Nil, domain.ErrUnauthorized
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		return domain.Identity{}, uuid.Nil, uuid.Nil, err
	}
	appID, err := pathID(r, "appID")
	if err != nil {
		return domain.Identity{}, uuid.Nil, uuid.Nil, err
	}
	return identity, projectID, appID, nil
}
