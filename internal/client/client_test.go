package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revizly/internal/orchestrator"
)

func TestCheckResponse(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, orchestrator.ErrUnauthorized},
		{http.StatusForbidden, orchestrator.ErrForbidden},
		{http.StatusNotFound, orchestrator.ErrNotFound},
		{http.StatusInternalServerError, orchestrator.ErrDeleteMessagesFailed},
		{http.StatusBadGateway, orchestrator.ErrDeleteMessagesFailed},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"code":1,"message":"server says no"}`))
		}))

		resp, err := NewResty(srv.URL, "test", 0).R().SetContext(context.Background()).Get("/x")
		got := CheckResponse("op", resp, err, orchestrator.ErrDeleteMessagesFailed)
		srv.Close()

		require.Error(t, got)
		assert.True(t, errors.Is(got, tc.want), "status %d: %v", tc.status, got)
		assert.Contains(t, got.Error(), "server says no")
	}
}

func TestCheckResponseTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	resp, err := NewResty(url, "test", 0).R().Get("/x")
	got := CheckResponse("op", resp, err, orchestrator.ErrInferenceFailure)
	assert.True(t, errors.Is(got, orchestrator.ErrInferenceFailure))
}

func TestCheckResponseSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	resp, err := NewResty(srv.URL, "test", 0).R().Post("/x")
	assert.NoError(t, CheckResponse("op", resp, err, orchestrator.ErrPersistenceFailure))
}

func TestCheckUpstream(t *testing.T) {
	for _, status := range []int{
		http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		resp, err := NewResty(srv.URL, "test", 0).R().Post("/x")
		got := CheckUpstream("op", resp, err, orchestrator.ErrInferenceFailure)
		srv.Close()

		assert.True(t, errors.Is(got, orchestrator.ErrInferenceFailure), "status %d: %v", status, got)
		assert.False(t, orchestrator.IsAuthError(got), "status %d", status)
		assert.False(t, errors.Is(got, orchestrator.ErrNotFound), "status %d", status)
	}
}
