package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/nao1215/tourism/internal/api"
	"github.com/nao1215/tourism/internal/config"
	"github.com/nao1215/tourism/internal/telemetry"
	"github.com/nao1215/tourism/pkg/event"
	"github.com/nao1215/tourism/pkg/gateway"
	"github.com/nao1215/tourism/pkg/httpclient"
	"github.com/nao1215/tourism/pkg/session"
)

// serviceName はトレースに記録するサービス名。
const serviceName = "tourismctl"

// flags はルートコマンドの共通フラグ。
type flags struct {
	baseURL    string
	timeout    time.Duration
	output     string
	sessionDB  string
	convention string
	verbose    bool
}

// app はコマンド実行中に共有する依存関係。
type app struct {
	out    io.Writer
	errOut io.Writer
	flags  flags

	cfg      config.Client
	store    *session.SQLiteStore
	gw       *gateway.Gateway
	auth     *api.AuthService
	logger   *log.Logger
	shutdown func(context.Context) error

	// suppressRedirect がtrueの間は再ログインの案内を表示しない。
	suppressRedirect bool
}

// setup は設定を読み込み、セッションストアとゲートウェイを初期化する。
// changedはフラグが明示的に指定されたかを返す。
func (a *app) setup(ctx context.Context, changed func(name string) bool) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if changed("base-url") {
		cfg.BaseURL = a.flags.baseURL
	}
	if changed("timeout") {
		if a.flags.timeout <= 0 {
			return fmt.Errorf("--timeoutは正の値を指定してください: %s", a.flags.timeout)
		}
		cfg.Timeout = a.flags.timeout
	}
	if changed("session-db") {
		cfg.SessionDB = a.flags.sessionDB
	}
	if changed("convention") {
		cfg.Convention = a.flags.convention
	}
	conv, err := cfg.SuccessConvention()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = log.New(io.Discard, "", 0)
	if a.flags.verbose {
		a.logger = log.New(a.errOut, "", log.LstdFlags)
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	store, err := session.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		return err
	}
	a.store = store

	a.gw = gateway.New(
		httpclient.New(cfg.BaseURL, httpclient.WithTimeout(cfg.Timeout)),
		store,
		gateway.WithConvention(conv),
		gateway.WithLogger(a.logger),
		gateway.WithNavigator(gateway.NewLoginRedirector(gateway.NavigatorFunc(a.redirectToLogin), 0)),
	)
	a.auth = api.NewAuthService(a.gw, store, a.onAuthEvent)
	a.logger.Printf("[CLI] base_url=%s timeout=%s convention=%s session=%s", cfg.BaseURL, cfg.Timeout, conv, cfg.SessionDB)
	return nil
}

// close はセッションストアとトレースを終了する。
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}

// redirectToLogin はセッション切れを利用者に知らせる。CLIにおけるログイン画面への遷移。
func (a *app) redirectToLogin(_ context.Context, e *event.Event) {
	if a.suppressRedirect {
		return
	}
	msg := "ログインの有効期限が切れました。tourismctl login で再ログインしてください"
	if data, err := event.DecodeData[event.SessionExpiredData](e); err == nil {
		a.logger.Printf("[CLI] セッション切れ: %s %s status=%d", data.Method, data.Path, data.Status)
	}
	fmt.Fprintln(a.errOut, warningStyle.Render(msg))
}

// onAuthEvent はログイン・ログアウトのイベントを記録する。
func (a *app) onAuthEvent(_ context.Context, e *event.Event) {
	a.logger.Printf("[CLI] %s (id=%s)", e.Type, e.ID)
}

// check はResultの失敗をerrorに変換する。
func check[T any](res gateway.Result[T]) (T, error) {
	v, err := res.Unwrap()
	if err != nil {
		return v, fmt.Errorf("リクエストに失敗: %w", err)
	}
	return v, nil
}
