package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRegisterHealthEndpoints_Liveness(t *testing.T) {
	e := echo.New()
	RegisterHealthEndpoints(e, "arbiter", "1.2.3", NewService(0))

	for _, path := range []string{"/health", "/healthz"} {
		rec := serve(e, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "OK", rec.Body.String(), path)
	}

	rec := serve(e, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	var info BuildInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "arbiter", info.ServiceName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		redisErr   error
		wantStatus int
		wantState  string
	}{
		{name: "all healthy", wantStatus: http.StatusOK, wantState: "ready"},
		{name: "redis down", redisErr: errors.New("dial tcp: connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(0)
			svc.AddChecker("postgres", CheckerFunc(func(context.Context) error { return nil }))
			svc.AddChecker("redis", CheckerFunc(func(context.Context) error { return tt.redisErr }))
			svc.AddDetail("broker", func() interface{} { return map[string]int{"clients": 2} })

			e := echo.New()
			RegisterHealthEndpoints(e, "arbiter", "dev", svc)
			rec := serve(e, "/ready")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var report Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.wantState, report.Status)
			assert.Equal(t, "arbiter", report.Service)
			assert.Equal(t, "healthy", report.Dependencies["postgres"].Status)
			assert.Equal(t, map[string]interface{}{"clients": float64(2)}, report.Details["broker"])
			if tt.redisErr != nil {
				assert.Equal(t, tt.redisErr.Error(), report.Dependencies["redis"].Error)
			}
		})
	}
}
