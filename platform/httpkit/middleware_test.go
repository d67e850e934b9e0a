package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		roles      any
		wantStatus int
	}{
		{"no roles in context", nil, http.StatusForbidden},
		{"wrong role", []string{"agent"}, http.StatusForbidden},
		{"matching role", []string{"agent", "admin"}, http.StatusOK},
		{"malformed roles value", "admin", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/leads/maintenance/mark-stale", nil)
			if tc.roles != nil {
				c.Set(ContextRolesKey, tc.roles)
			}

			reached := false
			RequireRole("admin")(c)
			if !c.IsAborted() {
				reached = true
			}

			if tc.wantStatus == http.StatusOK {
				if !reached {
					t.Fatalf("expected request to pass the role gate, got status %d", rec.Code)
				}
				return
			}
			if reached {
				t.Fatal("expected request to be rejected")
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}
