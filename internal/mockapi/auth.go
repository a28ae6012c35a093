package mockapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/tourism/pkg/middleware"
)

// loginRequest はログインリクエスト。usernameにはメールアドレスも指定できる。
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// registerRequest はユーザー登録リクエスト。
type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// profileRequest はプロフィール更新リクエスト。空の項目は変更しない。
type profileRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// authenticate はユーザー名とパスワードを検証する。
// 失敗時はHTTPステータスとメッセージを返す。
func (s *Server) authenticate(c *gin.Context, req loginRequest) (*User, int, string) {
	user, hash, err := s.store.userByName(c.Request.Context(), req.Username)
	if errors.Is(err, errNotFound) {
		return nil, http.StatusNotFound, "用户不存在"
	}
	if err != nil {
		log.Printf("[MockAPI] ユーザー取得エラー: %v", err)
		return nil, http.StatusInternalServerError, "服务器内部错误"
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, http.StatusUnauthorized, "密码错误"
	}
	if user.Status != 1 {
		return nil, http.StatusForbidden, "账号已禁用"
	}
	return user, 0, ""
}

// issueToken はユーザーのトークンを発行する。
func (s *Server) issueToken(user *User) (string, error) {
	return middleware.GenerateJWT(s.jwtSecret, middleware.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, s.tokenTTL)
}

// handleLogin は公開サイトのログインハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "登录信息不完整")
			return
		}

		user, status, message := s.authenticate(c, req)
		if user == nil {
			fail(c, status, message)
			return
		}

		token, err := s.issueToken(user)
		if err != nil {
			log.Printf("[MockAPI] JWT生成エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "登录成功", gin.H{"token": token, "user": user})
	}
}

// handleRegister はユーザー登録ハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "注册信息不完整")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[MockAPI] パスワードのハッシュ化に失敗: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		nickname := req.Nickname
		if nickname == "" {
			nickname = req.Username
		}

		user, created, err := s.store.createUser(c.Request.Context(), req.Username, string(hash), nickname, req.Email)
		if err != nil {
			log.Printf("[MockAPI] ユーザー作成エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		if !created {
			fail(c, http.StatusBadRequest, "用户名已存在")
			return
		}
		success(c, "注册成功", user)
	}
}

// handleLogout はログアウトハンドラを返す。トークンは無状態のため何もしない。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		success(c, "退出登录成功", nil)
	}
}

// handleProfile は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.store.userByID(c.Request.Context(), middleware.GetUserID(c))
		if errors.Is(err, errNotFound) {
			// トークンは有効だがユーザーが削除されている
			fail(c, http.StatusUnauthorized, "用户未登录或不存在")
			return
		}
		if err != nil {
			log.Printf("[MockAPI] ユーザー取得エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "获取成功", user)
	}
}

// handleUpdateProfile はプロフィール更新ハンドラを返す。
func (s *Server) handleUpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "请求参数不能为空")
			return
		}

		user, err := s.store.updateProfile(c.Request.Context(), middleware.GetUserID(c), req.Nickname, req.Email, req.Avatar)
		if errors.Is(err, errNotFound) {
			fail(c, http.StatusUnauthorized, "用户未登录或不存在")
			return
		}
		if err != nil {
			log.Printf("[MockAPI] プロフィール更新エラー: %v", err)
			fail(c, http.StatusInternalServerError, "服务器内部错误")
			return
		}
		success(c, "更新成功", user)
	}
}
