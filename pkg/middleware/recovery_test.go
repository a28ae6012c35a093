package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestRecovery はRecoveryミドルウェアを検証する。
func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("パニックが発生した場合500のエンベロープが返ること", func(t *testing.T) {
		t.Parallel()

		for _, v := range []any{"テスト用パニック", errors.New("boom"), 42} {
			router := gin.New()
			router.Use(Recovery())
			router.POST("/admin/attractions", func(_ *gin.Context) {
				panic(v)
			})

			req := httptest.NewRequest(http.MethodPost, "/admin/attractions", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("panic(%v): ステータスコード = %d, want %d", v, w.Code, http.StatusInternalServerError)
			}
			body := decodeEnvelope(t, w)
			if body.Code != 500 || body.Success || body.Message != "服务器内部错误" {
				t.Errorf("panic(%v): body = %+v", v, body)
			}
		}
	})

	t.Run("パニック後もサーバーが次のリクエストを処理できること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery())
		router.GET("/panic", func(_ *gin.Context) {
			panic("テスト用パニック")
		})
		router.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})
}
