// Package config は環境変数から設定を読み込む。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/nao1215/tourism/pkg/gateway"
)

// Client はCLIとAPIクライアントの設定。
type Client struct {
	// BaseURL はAPIのベースURL。
	BaseURL string `env:"TOURISM_API_BASE_URL" envDefault:"http://localhost:5000"`
	// Timeout は1リクエストあたりのタイムアウト。
	Timeout time.Duration `env:"TOURISM_TIMEOUT" envDefault:"15s"`
	// Convention は既定の成功判定方式（200、0、none）。
	Convention string `env:"TOURISM_SUCCESS_CONVENTION" envDefault:"200"`
	// SessionDB はトークンを保存するSQLiteファイル。空の場合はユーザー設定ディレクトリ配下。
	SessionDB string `env:"TOURISM_SESSION_DB"`
	// OTelEndpoint はOTLP/HTTPの送信先。空の場合はトレースを送信しない。
	OTelEndpoint string `env:"TOURISM_OTEL_ENDPOINT"`
}

// MockAPI は開発用バックエンドの設定。
type MockAPI struct {
	// Port はリッスンポート。
	Port string `env:"PORT" envDefault:"5000"`
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration `env:"JWT_TTL" envDefault:"24h"`
	// FrontendURLs はCORSで許可するオリジン。
	FrontendURLs []string `env:"FRONTEND_URL" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	// DBPath はSQLiteファイルのパス。
	DBPath string `env:"MOCKAPI_DB" envDefault:":memory:"`
	// OTelEndpoint はOTLP/HTTPの送信先。
	OTelEndpoint string `env:"TOURISM_OTEL_ENDPOINT"`
}

// ParseEnv は環境変数をtargetに読み込む。
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return nil
}

// LoadClient はClientの設定を読み込んで検証する。
func LoadClient() (Client, error) {
	var c Client
	if err := ParseEnv(&c); err != nil {
		return Client{}, err
	}
	if c.Timeout <= 0 {
		return Client{}, fmt.Errorf("TOURISM_TIMEOUTは正の値を指定してください: %s", c.Timeout)
	}
	if _, err := c.SuccessConvention(); err != nil {
		return Client{}, err
	}
	if c.SessionDB == "" {
		path, err := DefaultSessionDB()
		if err != nil {
			return Client{}, err
		}
		c.SessionDB = path
	}
	return c, nil
}

// LoadMockAPI はMockAPIの設定を読み込む。
func LoadMockAPI() (MockAPI, error) {
	var m MockAPI
	if err := ParseEnv(&m); err != nil {
		return MockAPI{}, err
	}
	return m, nil
}

// SuccessConvention は既定の成功判定方式を返す。
func (c Client) SuccessConvention() (gateway.Convention, error) {
	conv, err := gateway.ParseConvention(c.Convention)
	if err != nil {
		return gateway.ConventionDefault, fmt.Errorf("TOURISM_SUCCESS_CONVENTIONが不正: %w", err)
	}
	return conv, nil
}

// DefaultSessionDB はトークンを保存する既定のファイルパスを返す。
func DefaultSessionDB() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("設定ディレクトリの取得に失敗: %w", err)
	}
	return filepath.Join(dir, "tourism", "session.db"), nil
}
