package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: page", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: panel closed", ErrConflict), http.StatusConflict},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
	}

	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("secret dsn"))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestRespondErrorNamesProblemClass(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("%w: estado", ErrValidation))

	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "urn:odyssey-admin:problem:validation", body.Type)
	assert.Contains(t, body.Detail, "estado")
}

func TestJSONWritesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, JSON(rec, http.StatusCreated, map[string]int{"total": 3}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total":3}`, rec.Body.String())
}

func TestJSONEncodeFailureIsProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	err := JSON(rec, http.StatusOK, map[string]any{"rows": make(chan int)})

	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "urn:odyssey-admin:problem:encoding", body.Type)
}
