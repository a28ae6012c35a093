package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/nao1215/tourism/pkg/event"
)

// Navigator はセッション切れを受け取ってログイン画面へ遷移させる。
// ゲートウェイ自身は画面遷移を行わず、このインターフェースを呼ぶだけである。
// 同じ遷移が複数回呼ばれても問題ない実装にすること。
type Navigator interface {
	RedirectToLogin(ctx context.Context, e *event.Event)
}

// NavigatorFunc は関数をNavigatorとして扱うアダプタ。
type NavigatorFunc func(ctx context.Context, e *event.Event)

// RedirectToLogin はf(ctx, e)を呼ぶ。
func (f NavigatorFunc) RedirectToLogin(ctx context.Context, e *event.Event) {
	f(ctx, e)
}

// nopNavigator は何もしないNavigator。
type nopNavigator struct{}

func (nopNavigator) RedirectToLogin(context.Context, *event.Event) {}

// DefaultRedirectWindow はLoginRedirectorが重複した遷移をまとめる期間。
const DefaultRedirectWindow = time.Second

// LoginRedirector は短時間に連続した遷移要求を1回にまとめるNavigator。
// 未ログイン状態で並行したリクエストがそろって401を受け取った場合でも、
// ログイン画面への遷移は1回だけになる。
type LoginRedirector struct {
	next   Navigator
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewLoginRedirector はnextへの遷移をwindow単位でまとめるLoginRedirectorを生成する。
// windowが0以下の場合はDefaultRedirectWindowを使う。
func NewLoginRedirector(next Navigator, window time.Duration) *LoginRedirector {
	if window <= 0 {
		window = DefaultRedirectWindow
	}
	return &LoginRedirector{next: next, window: window, now: time.Now}
}

// RedirectToLogin は前回の遷移からwindow以上経過している場合のみnextを呼ぶ。
func (r *LoginRedirector) RedirectToLogin(ctx context.Context, e *event.Event) {
	r.mu.Lock()
	now := r.now()
	if !r.last.IsZero() && now.Sub(r.last) < r.window {
		r.mu.Unlock()
		return
	}
	r.last = now
	r.mu.Unlock()

	r.next.RedirectToLogin(ctx, e)
}
