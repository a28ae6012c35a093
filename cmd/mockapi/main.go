// 観光APIの開発用バックエンドのエントリポイント。
// ゲートウェイとtourismctlを実際のバックエンド無しで動かすために使用する。
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nao1215/tourism/internal/config"
	"github.com/nao1215/tourism/internal/mockapi"
	"github.com/nao1215/tourism/internal/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// run はサーバーを起動し、終了するまでブロックする。
// 戻る前にトレースとデータベースを閉じる。
func run(ctx context.Context) error {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, "tourism-mockapi", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("トレースの初期化に失敗: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("トレースの終了処理に失敗: %v", err)
		}
	}()

	server, err := mockapi.NewServer(ctx, mockapi.Config{
		Port:           cfg.Port,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		AllowedOrigins: cfg.FrontendURLs,
		DBPath:         cfg.DBPath,
		AccessLog:      true,
	})
	if err != nil {
		return fmt.Errorf("開発用バックエンドの初期化に失敗: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("データベースのクローズに失敗: %v", err)
		}
	}()

	log.Printf("開発用バックエンドを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		return fmt.Errorf("開発用バックエンドの起動に失敗: %w", err)
	}
	return nil
}
