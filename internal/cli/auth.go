package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/tourism/internal/api"
	"github.com/nao1215/tourism/pkg/gateway"
	"github.com/nao1215/tourism/pkg/session"
)

// newLoginCommand はloginコマンドを生成する。
func newLoginCommand(a *app) *cobra.Command {
	var (
		req   api.LoginRequest
		admin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "ログインしてトークンを保存する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Username == "" || req.Password == "" {
				return errors.New("--usernameと--passwordを指定してください")
			}

			// ログイン失敗の401はセッション切れではない
			a.suppressRedirect = true
			defer func() { a.suppressRedirect = false }()

			var res gateway.Result[api.AuthResponse]
			if admin {
				res = a.auth.AdminLogin(cmd.Context(), req)
			} else {
				res = a.auth.Login(cmd.Context(), req)
			}
			auth, err := check(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("ログインしました: "+auth.User.Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "ユーザー名またはメールアドレス")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "パスワード")
	cmd.Flags().BoolVar(&admin, "admin", false, "管理画面にログインする")
	return cmd
}

// newLogoutCommand はlogoutコマンドを生成する。
func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "ログアウトしてトークンを破棄する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.suppressRedirect = true
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("ログアウトしました"))
			return nil
		},
	}
}

// statusView はstatusコマンドの出力。
type statusView struct {
	LoggedIn  bool       `json:"logged_in" yaml:"logged_in"`
	UserID    int64      `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Username  string     `json:"username,omitempty" yaml:"username,omitempty"`
	Role      int        `json:"role" yaml:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
}

// newStatusCommand はstatusコマンドを生成する。
// バックエンドには問い合わせず、保存されているトークンの内容を表示する。
func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "保存されているログイン状態を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.store.Token(cmd.Context())
			if err != nil {
				return err
			}
			if token == "" {
				return render(a.out, a.flags.output, statusView{})
			}

			claims, err := session.Inspect(token)
			if err != nil {
				return err
			}
			view := statusView{
				LoggedIn: true,
				Username: claims.Username,
				Role:     claims.Role,
				Expired:  claims.Expired(time.Now()),
			}
			if id, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
				view.UserID = id
			}
			if claims.ExpiresAt != nil {
				exp := claims.ExpiresAt.Time
				view.ExpiresAt = &exp
			}
			return render(a.out, a.flags.output, view)
		},
	}
}
