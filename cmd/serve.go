package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/shouni/go-picture-book/internal/builder"

	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd は絵本セッションを操作する HTTP API を起動するのだ。
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "絵本の HTTP API サーバーを起動するのだ。",
	Example: "  picture-book serve --addr :8080",
	RunE:    serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "待ち受けアドレスなのだ（未指定なら LISTEN_ADDR）。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if appCfg.UsesDefaultSessionSecret() {
		slog.Warn("SESSION_SECRET が未設定なので開発用の鍵で Cookie に署名するのだ。本番では必ず設定してほしいのだ")
	}

	appCtx, err := builder.BuildAppContext(ctx, appCfg)
	if err != nil {
		return err
	}
	srv, err := builder.BuildServer(appCtx)
	if err != nil {
		return fmt.Errorf("サーバーの構築に失敗しました: %w", err)
	}

	addr := appCfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	return srv.Run(ctx, addr)
}
