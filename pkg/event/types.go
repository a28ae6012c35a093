package event

import (
	"encoding/json"
	"time"
)

// Type はセッションイベントの種類を表す。
type Type string

const (
	// TypeSessionExpired は認証切れ（401）を検知しセッションを破棄したことを表す。
	TypeSessionExpired Type = "SessionExpired"
	// TypeLoggedIn はログインに成功しトークンを保存したことを表す。
	TypeLoggedIn Type = "LoggedIn"
	// TypeLoggedOut は明示的なログアウトでトークンを破棄したことを表す。
	TypeLoggedOut Type = "LoggedOut"
)

// Event はセッションのライフサイクルで発生するイベントを表す。
// ナビゲーション層はこのイベントを受け取ってログイン画面へ遷移する。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// Type はイベントの種類。
	Type Type `json:"type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが発生した日時。
	CreatedAt time.Time `json:"created_at"`
}

// SessionExpiredData はSessionExpiredイベントのデータ。
type SessionExpiredData struct {
	// Method は401を受け取ったリクエストのHTTPメソッド。
	Method string `json:"method"`
	// Path は401を受け取ったリクエストのパス。
	Path string `json:"path"`
	// Status は判定の根拠となったステータスコード。
	Status int `json:"status"`
	// Message はバックエンドが返したメッセージ。
	Message string `json:"message"`
}

// LoggedInData はLoggedInイベントのデータ。
type LoggedInData struct {
	// UserID はログインしたユーザーのID。
	UserID int64 `json:"user_id"`
	// Username はログインしたユーザー名。
	Username string `json:"username"`
}
