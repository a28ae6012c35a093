package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はトークンから読み取った情報。
// 署名は検証しないため、表示用途にのみ使用すること。
type Claims struct {
	jwt.RegisteredClaims
	// Username はトークンに含まれるユーザー名。
	Username string `json:"username"`
	// Role は管理画面用トークンの権限。一般ユーザーは0。
	Role int `json:"role"`
}

// Inspect はトークンのペイロードを署名検証なしでデコードする。
func Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("トークンのデコードに失敗: %w", err)
	}
	return claims, nil
}

// Expired はnow時点でトークンの有効期限が切れているかを返す。
// 有効期限が無いトークンは期限切れとみなさない。
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
