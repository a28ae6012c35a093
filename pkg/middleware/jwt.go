package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer は発行するトークンのiss。
const Issuer = "tourism-api"

// DefaultTokenTTL はトークンの既定の有効期間。
const DefaultTokenTTL = 24 * time.Hour

// RoleAdmin は管理画面にログインできる権限。
const RoleAdmin = 1

// Claims はJWTトークンのクレーム（ペイロード）を表す。
// ユーザーIDはsubに10進数の文字列として格納する。
type Claims struct {
	jwt.RegisteredClaims
	// Username はログインしたユーザー名。
	Username string `json:"username"`
	// Role はユーザーの権限。一般ユーザーは0。
	Role int `json:"role"`
}

// Identity はトークンに格納するユーザー情報。
type Identity struct {
	UserID   int64
	Username string
	Role     int
}

// コンテキストのキー
const (
	ctxKeyUserID   = "user_id"
	ctxKeyUsername = "username"
	ctxKeyRole     = "role"
)

// GenerateJWT はユーザー情報からHS256で署名したトークンを生成する。
// ttlが0以下の場合はDefaultTokenTTLを使う。
func GenerateJWT(secret string, id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		Username: id.Username,
		Role:     id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークンの署名と有効期限を検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("トークンが無効です")
	}
	return claims, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにユーザーID・ユーザー名・権限を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithEnvelope(c, http.StatusUnauthorized, "用户未登录")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			abortWithEnvelope(c, http.StatusUnauthorized, "Bearer トークン形式が不正です")
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			abortWithEnvelope(c, http.StatusUnauthorized, "Token has expired")
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			abortWithEnvelope(c, http.StatusUnauthorized, "トークンが無効です")
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyUsername, claims.Username)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin は管理者権限の無いリクエストを拒否するGinミドルウェアを返す。
// JWTAuthの後に適用すること。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt(ctxKeyRole) != RoleAdmin {
			abortWithEnvelope(c, http.StatusForbidden, "无管理员权限")
			return
		}
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// JWTAuthミドルウェアが事前に適用されていない場合は0を返す。
func GetUserID(c *gin.Context) int64 {
	userID, _ := c.Get(ctxKeyUserID)
	if id, ok := userID.(int64); ok {
		return id
	}
	return 0
}

// GetUsername はGinコンテキストからユーザー名を取得する。
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxKeyUsername)
}

// abortWithEnvelope はエンベロープ形式のエラーレスポンスを返して処理を中断する。
func abortWithEnvelope(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": message,
		"success": false,
	})
}
