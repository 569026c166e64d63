package intake

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHandleGRPCError_MapsStatusCodes(t *testing.T) {
	h := &RESTHandler{log: zerolog.Nop()}

	cases := []struct {
		err  error
		want int
	}{
		{status.Error(codes.Unauthenticated, "missing authenticated user"), http.StatusUnauthorized},
		{status.Error(codes.InvalidArgument, "data must not be empty"), http.StatusBadRequest},
		{status.Error(codes.PermissionDenied, "not allowed"), http.StatusForbidden},
		{status.Error(codes.NotFound, "submission not found"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.handleGRPCError(rec, c.err)
		assert.Equal(t, c.want, rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := &RESTHandler{log: zerolog.Nop()}
	rec := httptest.NewRecorder()
	h.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORS_HandlesPreflight(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/submit", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
