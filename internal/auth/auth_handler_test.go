package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/auth"
	autherrors "github.com/premidisfinal/premidis-fin/internal/auth/errors"
	authMock "github.com/premidisfinal/premidis-fin/internal/auth/mock"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type staticRules struct{}

func (staticRules) GetRules(context.Context) (leaverule.Rules, error) {
	return leaverule.Rules{Version: 1, Days: leaverule.DefaultDays()}, nil
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *authMock.MockService) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := authMock.NewMockService(ctrl)
	handler := auth.NewHandler(svc, staticRules{}, false)

	r := gin.New()
	r.POST("/login", handler.Login)
	r.POST("/register", handler.Register)
	r.POST("/logout", handler.Logout)
	r.PUT("/me", func(c *gin.Context) { c.Set("user_id", "u-1"); c.Next() }, handler.UpdateMe)
	r.GET("/me", handler.Me)
	return r, svc
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Login(t *testing.T) {
	t.Run("success sets cookie", func(t *testing.T) {
		router, svc := setupAuthRouter(t)
		svc.EXPECT().
			Login(gomock.Any(), "grace@premidis.cd", "password123").
			Return(auth.TokenResponse{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)

		w := doJSON(router, http.MethodPost, "/login", `{"email":"grace@premidis.cd","password":"password123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=tok")
		assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		router, svc := setupAuthRouter(t)
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(auth.TokenResponse{}, autherrors.ErrInvalidCredentials)

		w := doJSON(router, http.MethodPost, "/login", `{"email":"grace@premidis.cd","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		router, svc := setupAuthRouter(t)
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(auth.TokenResponse{}, autherrors.ErrAccountInactive)

		w := doJSON(router, http.MethodPost, "/login", `{"email":"grace@premidis.cd","password":"password123"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		router, _ := setupAuthRouter(t)

		w := doJSON(router, http.MethodPost, "/login", `{"email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, svc := setupAuthRouter(t)
		svc.EXPECT().
			Register(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, rules leaverule.Rules, req auth.RegisterRequest) (auth.TokenResponse, error) {
				assert.Equal(t, 1, rules.Version)
				assert.Equal(t, "New", req.FirstName)
				return auth.TokenResponse{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
			})

		w := doJSON(router, http.MethodPost, "/register",
			`{"email":"new@premidis.cd","password":"secret123","first_name":"New","last_name":"Hire"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		router, _ := setupAuthRouter(t)

		w := doJSON(router, http.MethodPost, "/register", `{"email":"invalid-email"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Me(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodGet, "/me", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_UpdateMe(t *testing.T) {
	router, svc := setupAuthRouter(t)
	svc.EXPECT().
		UpdateMe(gomock.Any(), "u-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req employee.UpdateProfileRequest) (auth.AuthResponse, error) {
			assert.Equal(t, "0990000000", *req.Phone)
			return auth.AuthResponse{ID: "u-1"}, nil
		})

	w := doJSON(router, http.MethodPut, "/me", `{"phone":"0990000000"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Logout(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
