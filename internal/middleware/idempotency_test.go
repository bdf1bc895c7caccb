package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(handled *int) (*gin.Engine, redismock.ClientMock) {
		rdb, mock := redismock.NewClientMock()
		r := gin.New()
		r.POST("/leaves",
			withIdentity("u-1", "employee"),
			middleware.Idempotency(rdb, zap.NewNop()),
			func(c *gin.Context) {
				*handled++
				c.JSON(http.StatusCreated, gin.H{"ok": true})
			},
		)
		return r, mock
	}

	post := func(r *gin.Engine, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("no key passes through", func(t *testing.T) {
		handled := 0
		r, mock := newRouter(&handled)

		w := post(r, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replays stored response", func(t *testing.T) {
		handled := 0
		r, mock := newRouter(&handled)
		mock.ExpectGet("idemp:/leaves:u-1:k-1").SetVal(`{"status":201,"body":{"ok":true,"data":{"id":"l-1"}}}`)

		w := post(r, "k-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replay"))
		assert.JSONEq(t, `{"ok":true,"data":{"id":"l-1"}}`, w.Body.String())
		assert.Equal(t, 0, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate is rejected", func(t *testing.T) {
		handled := 0
		r, mock := newRouter(&handled)
		mock.ExpectGet("idemp:/leaves:u-1:k-2").RedisNil()
		mock.ExpectSetNX("idemp:/leaves:u-1:k-2:lock", "locked", 30*time.Second).SetVal(false)

		w := post(r, "k-2")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
