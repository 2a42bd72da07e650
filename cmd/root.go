package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-picture-book/internal/config"

	"github.com/spf13/cobra"
)

var (
	appCfg *config.Config
	opts   config.GenerateOptions
)

var rootCmd = &cobra.Command{
	Use:               "picture-book",
	Short:             "Gemini で子ども向けのフォニックス絵本を作るのだ。",
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "物語の生成に使う Gemini モデル名なのだ（未指定なら GEMINI_MODEL）。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "挿絵の生成に使う Gemini モデル名なのだ（未指定なら IMAGE_GEMINI_MODEL）。")
	rootCmd.PersistentFlags().StringVarP(&opts.Mode, "mode", "m", "", "物語テンプレートのモードなのだ（phonics / rhyme）。")
	rootCmd.PersistentFlags().IntVarP(&opts.PageCount, "pages", "p", 0, "物語のページ数なのだ（未指定なら PAGE_COUNT）。")
}

// preRunAppE は、コマンド実行前に設定の読み込みと必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	appCfg = config.LoadConfig()
	appCfg.Options = opts

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: appCfg.SlogLevel(),
	})))

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if appCfg.GeminiAPIKey == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, storyCmd, publishCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
