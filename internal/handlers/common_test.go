package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, *utils.APIResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondDomainError(c, err)

	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, &body
}

func TestDomainErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid state", models.ErrInvalidState, http.StatusBadRequest, "INVALID_STATE"},
		{"already responded", models.ErrAlreadyResponded, http.StatusBadRequest, "INVALID_STATE"},
		{"busy", models.ErrAstrologerBusy, http.StatusBadRequest, "ASTROLOGER_UNAVAILABLE"},
		{"offline", models.ErrAstrologerOffline, http.StatusBadRequest, "ASTROLOGER_UNAVAILABLE"},
		{"insufficient funds", models.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
		{"inactive wallet", models.ErrWalletInactive, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := respond(t, tc.err)

			assert.Equal(t, tc.status, w.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}
