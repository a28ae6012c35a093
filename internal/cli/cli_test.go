package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tourism/internal/api"
	"github.com/nao1215/tourism/internal/mockapi"
	"github.com/nao1215/tourism/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

// cliEnv は開発用バックエンドとセッションファイルを持つテスト環境。
type cliEnv struct {
	baseURL   string
	sessionDB string
}

// newCLIEnv はインメモリの開発用バックエンドを起動する。
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	srv, err := mockapi.NewServer(context.Background(), mockapi.Config{
		JWTSecret: "cli-test-secret",
		DBPath:    ":memory:",
	})
	if err != nil {
		t.Fatalf("mockapi.NewServer()でエラーが発生: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &cliEnv{
		baseURL:   ts.URL,
		sessionDB: filepath.Join(t.TempDir(), "session.db"),
	}
}

// run はtourismctlを実行し、終了コードと出力を返す。
func (e *cliEnv) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	args = append([]string{"--base-url", e.baseURL, "--session-db", e.sessionDB}, args...)
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// TestLoginFlow はログインからログアウトまでの流れを検証する。
func TestLoginFlow(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	t.Run("未ログインの状態が表示されること", func(t *testing.T) {
		code, out, _ := env.run(t, "status")
		if code != 0 {
			t.Fatalf("終了コード = %d, want 0", code)
		}
		if !strings.Contains(out, `"logged_in": false`) {
			t.Errorf("出力 = %s", out)
		}
	})

	t.Run("パスワード誤りでは再ログインの案内を出さずに失敗すること", func(t *testing.T) {
		code, _, errOut := env.run(t, "login", "-u", "demo", "-p", "wrong")
		if code != 1 {
			t.Errorf("終了コード = %d, want 1", code)
		}
		if !strings.Contains(errOut, "密码错误") {
			t.Errorf("標準エラー = %s", errOut)
		}
		if strings.Contains(errOut, "tourismctl login") {
			t.Error("ログイン失敗で再ログインの案内が表示された")
		}
	})

	t.Run("ログインするとトークンが保存されること", func(t *testing.T) {
		code, out, errOut := env.run(t, "login", "-u", "demo", "-p", "demo123")
		if code != 0 {
			t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
		}
		if !strings.Contains(out, "ログインしました: demo") {
			t.Errorf("出力 = %s", out)
		}

		code, out, _ = env.run(t, "status", "-o", "yaml")
		if code != 0 {
			t.Fatalf("終了コード = %d, want 0", code)
		}
		for _, want := range []string{"logged_in: true", "username: demo", "expired: false"} {
			if !strings.Contains(out, want) {
				t.Errorf("出力に %q が含まれない: %s", want, out)
			}
		}
	})

	t.Run("ログアウトするとトークンが破棄されること", func(t *testing.T) {
		if code, _, errOut := env.run(t, "logout"); code != 0 {
			t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
		}
		_, out, _ := env.run(t, "status")
		if !strings.Contains(out, `"logged_in": false`) {
			t.Errorf("出力 = %s", out)
		}
	})
}

// TestSessionExpired は保存済みトークンが無効な場合の動作を検証する。
func TestSessionExpired(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	store, err := session.OpenSQLite(context.Background(), env.sessionDB)
	if err != nil {
		t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
	}
	if err := store.SetToken(context.Background(), "revoked.token.value"); err != nil {
		t.Fatalf("SetToken()でエラーが発生: %v", err)
	}
	store.Close()

	code, _, errOut := env.run(t, "get", "/api/user/profile")
	if code != 1 {
		t.Errorf("終了コード = %d, want 1", code)
	}
	if strings.Count(errOut, "tourismctl login") != 1 {
		t.Errorf("再ログインの案内が1回表示されていない: %s", errOut)
	}

	_, out, _ := env.run(t, "status")
	if !strings.Contains(out, `"logged_in": false`) {
		t.Errorf("トークンが破棄されていない: %s", out)
	}
}

// TestResourceCommands は各リソースの表示コマンドを検証する。
func TestResourceCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	t.Run("景点をキーワードで検索できること", func(t *testing.T) {
		code, out, errOut := env.run(t, "attractions", "list", "--keyword", "杭州")
		if code != 0 {
			t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
		}
		var page api.Page[api.Attraction]
		if err := json.Unmarshal([]byte(out), &page); err != nil {
			t.Fatalf("出力のパースに失敗: %v (%s)", err, out)
		}
		if page.Pagination.Total != 1 || page.Items[0].Name != "西湖" {
			t.Errorf("page = %+v", page)
		}
	})

	t.Run("旅行記をYAMLで表示できること", func(t *testing.T) {
		code, out, errOut := env.run(t, "notes", "list", "-o", "yaml")
		if code != 0 {
			t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
		}
		if !strings.Contains(out, "title: 黄山看日出") {
			t.Errorf("出力 = %s", out)
		}
	})

	t.Run("getは指定した成功判定方式で正規化すること", func(t *testing.T) {
		if code, _, errOut := env.run(t, "get", "/api/notes?per_page=1", "--convention", "0"); code != 0 {
			t.Errorf("終了コード = %d, stderr = %s", code, errOut)
		}
		// 既定のcode=200方式ではcode=0は失敗になる
		if code, _, _ := env.run(t, "get", "/api/notes"); code != 1 {
			t.Errorf("終了コード = %d, want 1", code)
		}
	})

	t.Run("エンベロープの無いレスポンスをそのまま表示すること", func(t *testing.T) {
		code, out, _ := env.run(t, "get", "/health", "--convention", "none")
		if code != 0 || !strings.Contains(out, `"status": "ok"`) {
			t.Errorf("終了コード = %d, 出力 = %s", code, out)
		}
	})

	t.Run("存在しない景点はエラーになること", func(t *testing.T) {
		code, _, errOut := env.run(t, "attractions", "show", "999")
		if code != 1 || !strings.Contains(errOut, "景点不存在") {
			t.Errorf("終了コード = %d, 標準エラー = %s", code, errOut)
		}
	})

	t.Run("不正なIDと出力形式はエラーになること", func(t *testing.T) {
		if code, _, _ := env.run(t, "notes", "show", "abc"); code != 1 {
			t.Errorf("終了コード = %d, want 1", code)
		}
		if code, _, _ := env.run(t, "status", "-o", "xml"); code != 1 {
			t.Errorf("終了コード = %d, want 1", code)
		}
	})
}

// TestAdminCommands は管理画面のコマンドを検証する。
func TestAdminCommands(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t)

	if code, _, errOut := env.run(t, "login", "--admin", "-u", "admin", "-p", "admin123"); code != 0 {
		t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
	}

	code, out, errOut := env.run(t, "admin", "dashboard", "--summary")
	if code != 0 {
		t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "attractions=4") {
		t.Errorf("出力 = %s", out)
	}

	if code, _, errOut := env.run(t, "admin", "delete-attraction", "4"); code != 0 {
		t.Fatalf("終了コード = %d, stderr = %s", code, errOut)
	}
	_, out, _ = env.run(t, "admin", "dashboard", "-o", "yaml")
	if !strings.Contains(out, "attraction_count: 3") {
		t.Errorf("出力 = %s", out)
	}
}
