package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/iatracker/internal/app/controllers"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/middleware"
	"github.com/yigit/iatracker/internal/pkg/auth"
)

func newRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "routes-test",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "iatracker-test",
	})
	r := gin.New()
	// Role checks run before any handler, so the controllers are never invoked here.
	require.NotPanics(t, func() {
		SetupRouter(r, &controllers.Controllers{}, middleware.NewAuthMiddleware(jwt))
	})
	return r, jwt
}

func tokenFor(t *testing.T, jwt *auth.JWTService, role models.RoleType) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.User{ID: 1, Username: "u", Role: role, Department: "CS"})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGates(t *testing.T) {
	r, jwt := newRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		role   models.RoleType
		want   int
	}{
		{"anonymous dashboard", http.MethodGet, "/api/v1/principal/dashboard", "", http.StatusUnauthorized},
		{"student on principal dashboard", http.MethodGet, "/api/v1/principal/dashboard", models.RoleStudent, http.StatusForbidden},
		{"faculty on principal search", http.MethodGet, "/api/v1/principal/search?q=a", models.RoleFaculty, http.StatusForbidden},
		{"student writing marks", http.MethodPost, "/api/v1/marks/batch", models.RoleStudent, http.StatusForbidden},
		{"faculty approving marks", http.MethodPost, "/api/v1/marks/approve", models.RoleFaculty, http.StatusForbidden},
		{"faculty reading student dashboard", http.MethodGet, "/api/v1/student/dashboard", models.RoleFaculty, http.StatusForbidden},
		{"student on analytics", http.MethodGet, "/api/v1/analytics/department/CS/stats", models.RoleStudent, http.StatusForbidden},
		{"faculty broadcasting", http.MethodPost, "/api/v1/notifications/broadcast", models.RoleFaculty, http.StatusForbidden},
		{"student recording attendance", http.MethodPost, "/api/v1/attendance", models.RoleStudent, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nothing-here", models.RolePrincipal, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, tt.role))
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
