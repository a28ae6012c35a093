package mockapi

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/nao1215/tourism/pkg/migration"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// seedUser は初期化時に作成するユーザー。
type seedUser struct {
	username string
	password string
	nickname string
	role     int
}

// seedUsers は開発用の初期ユーザー。
var seedUsers = []seedUser{
	{username: "admin", password: "admin123", nickname: "管理员", role: 1},
	{username: "demo", password: "demo123", nickname: "游客", role: 0},
}

// openDB はSQLiteデータベースを開き、スキーマと初期データを適用する。
// pathに ":memory:" を指定するとインメモリDBを使用する。
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == ":memory:" {
		// インメモリDBは接続ごとに別のDBになる
		db.SetMaxOpenConns(1)
	}

	if _, err := migration.Run(ctx, db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	if err := seed(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// seed は初期ユーザーと旅行記を作成する。既に存在するユーザーは変更しない。
func seed(ctx context.Context, db *sql.DB) error {
	for _, u := range seedUsers {
		var exists bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", u.username,
		).Scan(&exists); err != nil {
			return fmt.Errorf("初期ユーザーの確認に失敗: %w", err)
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
		}
		res, err := db.ExecContext(ctx,
			"INSERT INTO users (username, password_hash, nickname, email, role) VALUES (?, ?, ?, ?, ?)",
			u.username, string(hash), u.nickname, u.username+"@example.com", u.role,
		)
		if err != nil {
			return fmt.Errorf("初期ユーザーの作成に失敗: %w", err)
		}
		if u.role != 0 {
			continue
		}

		userID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("ユーザーIDの取得に失敗: %w", err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO notes (user_id, title, content, location, views) VALUES (?, ?, ?, ?, ?), (?, ?, ?, ?, ?)",
			userID, "西湖一日游", "断桥、苏堤、雷峰塔，一天走完。", "杭州", 88,
			userID, "黄山看日出", "凌晨四点出发，光明顶的日出值得。", "黄山", 42,
		); err != nil {
			return fmt.Errorf("初期旅行記の作成に失敗: %w", err)
		}
	}
	return nil
}
