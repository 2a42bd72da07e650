package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-picture-book/internal/builder"
	"github.com/shouni/go-picture-book/internal/config"

	"github.com/spf13/cobra"
)

// publishCmd は、書き出し済みの絵本を読み込んで挿絵を補い、もう一度書き出すのだ。
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "書き出し済みの絵本を読み込んで再出版するのだ！",
	Long: `story.json または book.md を読み込み、--output-dir に絵本を書き出し直すのだ。
--with-images を付けると、挿絵が無いページだけ新しく生成するのだ。物語の文章は生成し直さないのだよ。`,
	Example: "  picture-book publish --input output/book.md --with-images --output-dir output2 --html",
	RunE:    publishCommand,
}

func init() {
	publishCmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "読み込む story.json または book.md のパスなのだ（必須）。")
	publishCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "絵本の書き出し先ディレクトリなのだ。")
	publishCmd.Flags().BoolVar(&opts.WithImages, "with-images", false, "挿絵が無いページの挿絵を生成するのだ。")
	publishCmd.Flags().BoolVar(&opts.WithHTML, "html", false, "Markdown から HTML も生成するのだ。")
	publishCmd.Flags().IntVar(&opts.Concurrency, "concurrency", config.DefaultConcurrency, "挿絵を同時に生成する数なのだ。")
	_ = publishCmd.MarkFlagRequired("input")
}

// publishCommand は、publish サブコマンドの実行ロジック本体なのだ。
func publishCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	appCfg.Options = opts

	appCtx, err := builder.BuildAppContext(ctx, appCfg)
	if err != nil {
		return err
	}

	// 1. 読み込み
	story, images, err := appCtx.Workflow.BuildLoadRunner().Run(ctx, opts.InputFile)
	if err != nil {
		return fmt.Errorf("絵本の読み込みに失敗しました: %w", err)
	}

	// 2. 足りない挿絵を補う
	if opts.WithImages {
		images, err = appCtx.Workflow.BuildBookRunner().Complete(ctx, story, images)
		if err != nil {
			return err
		}
	}

	// 3. 書き出し
	pub, err := appCtx.Workflow.BuildPublishRunner()
	if err != nil {
		return err
	}
	result, err := pub.Run(ctx, story, images, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("絵本の書き出しに失敗しました: %w", err)
	}

	slog.Info("完了なのだ！絵本を書き出し直したのだよ。",
		"title", story.Title,
		"markdown", result.MarkdownPath,
		"html", result.HTMLPath,
		"images", len(result.ImagePaths),
	)
	return nil
}
