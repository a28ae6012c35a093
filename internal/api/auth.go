package api

import (
	"context"
	"log"
	"net/http"

	"github.com/nao1215/tourism/pkg/event"
	"github.com/nao1215/tourism/pkg/gateway"
	"github.com/nao1215/tourism/pkg/session"
)

// Login は公開サイトにログインする。トークンの保存は行わない。
func Login(ctx context.Context, gw *gateway.Gateway, req LoginRequest) gateway.Result[AuthResponse] {
	return gateway.Send[AuthResponse](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   req,
	})
}

// Register はユーザーを登録する。
func Register(ctx context.Context, gw *gateway.Gateway, req RegisterRequest) gateway.Result[User] {
	return gateway.Send[User](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   req,
	})
}

// Logout はバックエンドにログアウトを通知する。トークンの破棄は行わない。
func Logout(ctx context.Context, gw *gateway.Gateway) gateway.Result[struct{}] {
	return gateway.Send[struct{}](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/api/auth/logout",
	})
}

// CurrentUser はログイン中のユーザーを返す。
func CurrentUser(ctx context.Context, gw *gateway.Gateway) gateway.Result[User] {
	return gateway.Send[User](ctx, gw, gateway.Descriptor{Path: "/api/auth/me"})
}

// adminLoginEnvelope は管理画面のログインレスポンス。トークンはmessageに入っている。
type adminLoginEnvelope struct {
	Message AuthResponse `json:"message"`
}

// AdminLogin は管理画面にログインする。トークンの保存は行わない。
func AdminLogin(ctx context.Context, gw *gateway.Gateway, req LoginRequest) gateway.Result[AuthResponse] {
	res := gateway.Send[adminLoginEnvelope](ctx, gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/admin/login",
		Body:   req,
	})
	return gateway.Map(res, func(e adminLoginEnvelope) AuthResponse { return e.Message })
}

// EventHandler はログイン・ログアウトのイベントを受け取る関数。
type EventHandler func(ctx context.Context, e *event.Event)

// AuthService はログイン状態をセッションストアと同期させる。
type AuthService struct {
	gw      *gateway.Gateway
	store   session.Store
	onEvent EventHandler
}

// NewAuthService は新しいAuthServiceを生成する。onEventはnilでもよい。
func NewAuthService(gw *gateway.Gateway, store session.Store, onEvent EventHandler) *AuthService {
	if onEvent == nil {
		onEvent = func(context.Context, *event.Event) {}
	}
	return &AuthService{gw: gw, store: store, onEvent: onEvent}
}

// Login は公開サイトにログインし、トークンをセッションストアに保存する。
func (s *AuthService) Login(ctx context.Context, req LoginRequest) gateway.Result[AuthResponse] {
	return s.remember(ctx, Login(ctx, s.gw, req))
}

// AdminLogin は管理画面にログインし、トークンをセッションストアに保存する。
func (s *AuthService) AdminLogin(ctx context.Context, req LoginRequest) gateway.Result[AuthResponse] {
	return s.remember(ctx, AdminLogin(ctx, s.gw, req))
}

// remember はログイン結果のトークンを保存し、LoggedInイベントを通知する。
func (s *AuthService) remember(ctx context.Context, res gateway.Result[AuthResponse]) gateway.Result[AuthResponse] {
	auth, ok := res.Value()
	if !ok {
		return res
	}
	if auth.Token == "" {
		return gateway.Err[AuthResponse](gateway.ErrorInfo{Code: 500, Message: "login response has no token"})
	}
	if err := s.store.SetToken(ctx, auth.Token); err != nil {
		log.Printf("[Auth] トークンの保存に失敗: %v", err)
		return gateway.Err[AuthResponse](gateway.ErrorInfo{Code: 500, Message: "failed to save session"})
	}

	ev, err := event.New(event.TypeLoggedIn, event.LoggedInData{UserID: auth.User.ID, Username: auth.User.Username})
	if err != nil {
		log.Printf("[Auth] イベントの生成に失敗: %v", err)
		return res
	}
	s.onEvent(ctx, ev)
	return res
}

// Logout はバックエンドにログアウトを通知し、トークンを破棄する。
// バックエンドへの通知が失敗してもトークンは破棄する。
func (s *AuthService) Logout(ctx context.Context) error {
	if info, failed := Logout(ctx, s.gw).Failure(); failed {
		log.Printf("[Auth] ログアウトの通知に失敗: %v", info)
	}
	if err := s.store.ClearToken(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	ev, err := event.New(event.TypeLoggedOut, nil)
	if err != nil {
		log.Printf("[Auth] イベントの生成に失敗: %v", err)
		return nil
	}
	s.onEvent(ctx, ev)
	return nil
}
