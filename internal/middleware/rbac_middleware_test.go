package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeRBAC struct {
	calls int
	caps  map[string]domain.CapabilitySet
	err   error
}

func (f *fakeRBAC) Capabilities(ctx context.Context, role string) (domain.CapabilitySet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.caps[role], nil
}

func newRBAC() *fakeRBAC {
	return &fakeRBAC{caps: map[string]domain.CapabilitySet{
		"employee": domain.NewCapabilitySet(
			domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionRead},
			domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionCreate},
		),
		"admin": domain.NewCapabilitySet(
			domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionRead},
			domain.Capability{Resource: domain.ResourceLeave, Action: domain.ActionApprove},
		),
	}}
}

func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.CtxUserID, userID)
		}
		c.Set(middleware.CtxRole, role)
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(rbac *fakeRBAC, userID, role string) *gin.Engine {
		r := gin.New()
		r.PUT("/leaves/:id",
			withIdentity(userID, role),
			middleware.RBACAuthorize(rbac, domain.ResourceLeave, domain.ActionRead),
			middleware.RBACAuthorize(rbac, domain.ResourceLeave, domain.ActionApprove),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		return r
	}

	t.Run("non elevated caller is forbidden", func(t *testing.T) {
		rbac := newRBAC()
		w := httptest.NewRecorder()
		newRouter(rbac, "u-1", "employee").ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/leaves/abc", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "leave:approve")
	})

	t.Run("approver passes and role is resolved once", func(t *testing.T) {
		rbac := newRBAC()
		w := httptest.NewRecorder()
		newRouter(rbac, "u-2", "admin").ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/leaves/abc", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, rbac.calls)
	})

	t.Run("missing identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(newRBAC(), "", "").ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/leaves/abc", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("resolver failure", func(t *testing.T) {
		rbac := newRBAC()
		rbac.err = errors.New("db down")
		w := httptest.NewRecorder()
		newRouter(rbac, "u-3", "admin").ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/leaves/abc", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
