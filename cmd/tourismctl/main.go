// 観光APIのコマンドラインクライアント。
// ログイン状態をローカルに保存し、景点・旅行記・管理画面のAPIを呼び出す。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/tourism/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
