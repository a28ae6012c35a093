package mockapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tourism/pkg/middleware"
)

// handleAdminLogin は管理画面のログインハンドラを返す。
// 管理画面のAPIは業務エラーでもHTTP 200を返し、エンベロープのcodeで区別する。
// 成功時はトークンとユーザーをmessageに格納する。
func (s *Server) handleAdminLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "用户名和密码不能为空")
			return
		}

		user, status, _ := s.authenticate(c, req)
		switch {
		case status == http.StatusInternalServerError:
			failWithCode(c, http.StatusOK, status, "服务器内部错误")
			return
		case user == nil:
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "用户名或密码错误")
			return
		case user.Role != middleware.RoleAdmin:
			failWithCode(c, http.StatusOK, http.StatusForbidden, "无管理员权限")
			return
		}

		token, err := s.issueToken(user)
		if err != nil {
			log.Printf("[MockAPI] JWT生成エラー: %v", err)
			failWithCode(c, http.StatusOK, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, gin.H{"token": token, "user": user}, nil)
	}
}

// handleDashboard は管理画面トップの集計ハンドラを返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := s.store.dashboard(c.Request.Context())
		if err != nil {
			log.Printf("[MockAPI] 集計エラー: %v", err)
			failWithCode(c, http.StatusOK, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "获取成功", d)
	}
}

// handleCreateAttraction は景点作成のハンドラを返す。
func (s *Server) handleCreateAttraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in AttractionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "景点名称不能为空")
			return
		}

		a, err := s.store.createAttraction(c.Request.Context(), in)
		if err != nil {
			log.Printf("[MockAPI] 景点作成エラー: %v", err)
			failWithCode(c, http.StatusOK, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "创建成功", a)
	}
}

// handleUpdateAttraction は景点更新のハンドラを返す。
func (s *Server) handleUpdateAttraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "无效的景点ID")
			return
		}
		var in AttractionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "景点名称不能为空")
			return
		}

		a, err := s.store.updateAttraction(c.Request.Context(), id, in)
		if errors.Is(err, errNotFound) {
			failWithCode(c, http.StatusOK, http.StatusNotFound, "景点不存在")
			return
		}
		if err != nil {
			log.Printf("[MockAPI] 景点更新エラー: %v", err)
			failWithCode(c, http.StatusOK, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "更新成功", a)
	}
}

// handleDeleteAttraction は景点削除のハンドラを返す。
func (s *Server) handleDeleteAttraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			failWithCode(c, http.StatusOK, http.StatusBadRequest, "无效的景点ID")
			return
		}

		err := s.store.deleteAttraction(c.Request.Context(), id)
		if errors.Is(err, errNotFound) {
			failWithCode(c, http.StatusOK, http.StatusNotFound, "景点不存在")
			return
		}
		if err != nil {
			log.Printf("[MockAPI] 景点削除エラー: %v", err)
			failWithCode(c, http.StatusOK, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "删除成功", nil)
	}
}
