package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/tourism/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore はSQLiteファイルにトークンを永続化するストア。
// ブラウザのlocalStorageに相当し、CLIの起動をまたいでログイン状態を保持する。
type SQLiteStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite は指定パスのSQLiteファイルを開き、スキーマを適用する。
// pathに ":memory:" を指定するとインメモリDBを使用する。
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("セッションディレクトリの作成に失敗: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// 単一行のテーブルしか扱わないため接続は1本で足りる
	db.SetMaxOpenConns(1)

	if _, err := migration.Run(ctx, db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Token は保存されているトークンを返す。
func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT token FROM sessions WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// SetToken はトークンを保存する。空文字列の場合は破棄と同じ扱いになる。
func (s *SQLiteStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, updated_at) VALUES (1, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at
	`, token)
	if err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// ClearToken はトークンを破棄する。
func (s *SQLiteStore) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1"); err != nil {
		return fmt.Errorf("トークンの破棄に失敗: %w", err)
	}
	return nil
}

// CompareAndClear は保存されているトークンがtokenと一致する場合に限り破棄する。
func (s *SQLiteStore) CompareAndClear(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1 AND token = ?", token)
	if err != nil {
		return false, fmt.Errorf("トークンの破棄に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return n == 1, nil
}
