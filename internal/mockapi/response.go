package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// success はcode=200のエンベロープで成功を返す。dataがnilの場合はdataを含めない。
func success(c *gin.Context, message any, data any) {
	body := gin.H{
		"code":    http.StatusOK,
		"message": message,
		"success": true,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

// fail はcode=statusのエンベロープで失敗を返す。
func fail(c *gin.Context, status int, message string) {
	failWithCode(c, status, status, message)
}

// failWithCode はHTTPステータスとエンベロープのcodeを個別に指定して失敗を返す。
// 管理画面のAPIはHTTP 200のまま業務エラーのcodeを返す。
func failWithCode(c *gin.Context, status, code int, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
		"success": false,
	})
}

// successCode0 はcode=0のエンベロープで成功を返す。旅行記のAPIが使用する。
func successCode0(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

// page はページング付きの一覧。
type page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
