package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtside/badminton-league/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	newRequest := func(body string) (*httptest.ResponseRecorder, *http.Request) {
		return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	t.Run("valid body", func(t *testing.T) {
		w, r := newRequest(`{"name": "Drop Shots"}`)
		var dst payload
		require.NoError(t, readJSON(w, r, &dst))
		assert.Equal(t, "Drop Shots", dst.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		w, r := newRequest("")
		var dst payload
		assert.EqualError(t, readJSON(w, r, &dst), "body must not be empty")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w, r := newRequest(`{"name": `)
		var dst payload
		assert.ErrorContains(t, readJSON(w, r, &dst), "badly-formed JSON")
	})

	t.Run("unknown field", func(t *testing.T) {
		w, r := newRequest(`{"name": "x", "surprise": true}`)
		var dst payload
		assert.ErrorContains(t, readJSON(w, r, &dst), "unknown key")
	})

	t.Run("wrong type", func(t *testing.T) {
		w, r := newRequest(`{"name": 7}`)
		var dst payload
		assert.ErrorContains(t, readJSON(w, r, &dst), `incorrect JSON type for field "name"`)
	})

	t.Run("trailing value", func(t *testing.T) {
		w, r := newRequest(`{"name": "x"}{"name": "y"}`)
		var dst payload
		assert.ErrorContains(t, readJSON(w, r, &dst), "single JSON value")
	})
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrMatchNotFound, http.StatusNotFound},
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrAlreadyFinalized, http.StatusConflict},
		{services.ErrTeamHasCompletedMatches, http.StatusConflict},
		{services.ErrPlayerOnTeam, http.StatusConflict},
		{services.ErrScheduleAlreadyGenerated, http.StatusConflict},
		{services.ErrMatchDrawn, http.StatusBadRequest},
		{services.ErrInvalidSetCount, http.StatusBadRequest},
		{services.ErrTournamentNotLocked, http.StatusBadRequest},
		{services.ErrScorerPINInvalid, http.StatusBadRequest},
		{services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{services.ErrAuthEmailTaken, http.StatusConflict},
		{services.ErrFinalizeForbidden, http.StatusForbidden},
		{services.ErrForbiddenOperation, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}
