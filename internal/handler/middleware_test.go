package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g1000/portal/internal/domain"
)

// staticResolver resolves a fixed identity for a known token. It stands in
// for the JWT AuthService in tests and demo environments.
type staticResolver struct {
	token    string
	identity domain.Identity
}

func (r staticResolver) Resolve(token string) (domain.Identity, error) {
	if token != r.token {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return r.identity, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := GetIdentity(r.Context())
		WriteJSON(w, http.StatusOK, map[string]string{"user_id": identity.UserID.String()})
	})
}

func TestAuth_ValidToken(t *testing.T) {
	identity := domain.Identity{UserID: uuid.New(), Role: domain.RoleOwner}
	mw := Auth(staticResolver{token: "good-token", identity: identity})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, identity.UserID.String(), envelope.Data["user_id"])
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	mw := Auth(staticResolver{token: "good-token"})

	for _, header := range []string{"", "good-token", "Basic good-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		mw(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuth_BadToken(t *testing.T) {
	mw := Auth(staticResolver{token: "good-token"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(domain.RoleOwner)

	// Wrong role is forbidden, not unauthorized.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetIdentity(req.Context(), domain.Identity{UserID: uuid.New(), Role: domain.RoleStudent}))
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No identity at all is unauthorized.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Matching role passes through.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetIdentity(req.Context(), domain.Identity{UserID: uuid.New(), Role: domain.RoleOwner}))
	rec = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: cannot accept", domain.ErrInvalidState), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: already exists", domain.ErrConflict), http.StatusConflict},
		{&domain.ValidationError{Field: "cover_note", Message: "too short"}, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)

		var envelope Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.NotEmpty(t, envelope.Error)
	}
}

func TestWriteError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &domain.ValidationError{Field: "cover_note", Message: "must be at least 50 characters"})

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Details, 1)
	assert.Equal(t, "cover_note", envelope.Details[0].Field)
}

func TestWriteError_InternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection reset by peer"))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "An unexpected error occurred", envelope.Error)
	assert.NotContains(t, envelope.Error, "pq:")
}
