package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/tourism/pkg/gateway"
)

// newRootCommand はtourismctlのルートコマンドを生成する。
func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tourismctl",
		Short: "観光APIのコマンドラインクライアント",
		Long: `観光APIをコマンドラインから操作する。

ログインしたトークンはローカルのSQLiteに保存され、以降のコマンドで自動的に使用される。
トークンの有効期限が切れた場合は破棄され、再ログインを求められる。

  tourismctl login -u demo -p demo123
  tourismctl attractions list --keyword 杭州
  tourismctl notes list -o yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.flags.output != formatJSON && a.flags.output != formatYAML {
				return fmt.Errorf("未対応の出力形式: %s", a.flags.output)
			}
			return a.setup(cmd.Context(), cmd.Flags().Changed)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.baseURL, "base-url", "", "APIのベースURL（既定値: TOURISM_API_BASE_URL）")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "1リクエストあたりのタイムアウト（既定値: TOURISM_TIMEOUT）")
	pf.StringVarP(&a.flags.output, "output", "o", formatJSON, "出力形式（json|yaml）")
	pf.StringVar(&a.flags.sessionDB, "session-db", "", "トークンを保存するファイル（既定値: TOURISM_SESSION_DB）")
	pf.StringVar(&a.flags.convention, "convention", "", "既定の成功判定方式（200|0|none）")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "詳細なログを出力する")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newStatusCommand(a),
		newGetCommand(a),
		newAttractionsCommand(a),
		newNotesCommand(a),
		newAdminCommand(a),
	)
	return root
}

// Execute はargsのコマンドを実行し、終了コードを返す。
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil {
		fmt.Fprintln(stderr, errorStyle.Render("終了処理に失敗: "+cerr.Error()))
	}
	if err == nil {
		return 0
	}

	var info gateway.ErrorInfo
	if errors.As(err, &info) && info.Unauthorized() {
		// 再ログインの案内はNavigatorが表示済み
		fmt.Fprintln(stderr, errorStyle.Render(info.Message))
		return 1
	}
	fmt.Fprintln(stderr, errorStyle.Render("エラー: "+err.Error()))
	return 1
}

// addPageFlags はページ指定のフラグを追加する。
func addPageFlags(fs *pflag.FlagSet, page, perPage *int) {
	fs.IntVar(page, "page", 0, "ページ番号")
	fs.IntVar(perPage, "per-page", 0, "1ページあたりの件数")
}
