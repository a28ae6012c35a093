package session

import "context"

// Store は認証トークンを保持するストア。
// トークンが無い状態は空文字列で表す。
type Store interface {
	// Token は現在のトークンを返す。未ログインの場合は空文字列。
	Token(ctx context.Context) (string, error)
	// SetToken はトークンを保存する。ログイン成功時に呼ばれる。
	SetToken(ctx context.Context, token string) error
	// ClearToken はトークンを破棄する。既に空の場合は何もしない。
	ClearToken(ctx context.Context) error
	// CompareAndClear は現在のトークンがtokenと一致する場合に限り破棄し、
	// 実際に破棄したかどうかを返す。401を受け取ったリクエストが、
	// その後の再ログインで保存された新しいトークンを消さないために使う。
	CompareAndClear(ctx context.Context, token string) (bool, error)
}
