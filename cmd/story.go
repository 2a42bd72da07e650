package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-picture-book/internal/builder"
	"github.com/shouni/go-picture-book/internal/config"
	"github.com/shouni/go-picture-book/pkg/domain"

	"github.com/spf13/cobra"
)

// storyCmd は、トピックから物語を生成し、必要なら挿絵付きの絵本として書き出すのだ！
var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "トピックから絵本の物語を生成するのだ！",
	Long: `トピックから短いフォニックス絵本の物語を生成するのだ。
--with-images を付けると全ページの挿絵も生成し、--output-dir に story.json、book.md、images/ を書き出すのだ。`,
	Example: "  picture-book story --topic \"a brave dog\" --with-images --output-dir output --html",
	RunE:    storyCommand,
}

func init() {
	storyCmd.Flags().StringVarP(&opts.Topic, "topic", "t", "", "絵本のトピックなのだ（必須）。")
	storyCmd.Flags().BoolVar(&opts.WithImages, "with-images", false, "全ページの挿絵も生成するのだ。")
	storyCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "絵本の書き出し先ディレクトリなのだ。未指定なら物語の JSON を標準出力に出すのだ。")
	storyCmd.Flags().BoolVar(&opts.WithHTML, "html", false, "Markdown から HTML も生成するのだ。")
	storyCmd.Flags().IntVar(&opts.Concurrency, "concurrency", config.DefaultConcurrency, "挿絵を同時に生成する数なのだ。")
	storyCmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultGenerateTimeout, "物語生成のタイムアウトなのだ。")
	_ = storyCmd.MarkFlagRequired("topic")
}

// storyCommand は、story サブコマンドの実行ロジック本体なのだ。
func storyCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	appCfg.Options = opts

	appCtx, err := builder.BuildAppContext(ctx, appCfg)
	if err != nil {
		return err
	}

	// 1. 物語の生成
	storyCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		storyCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	story, err := appCtx.Workflow.BuildStoryRunner().Run(storyCtx, opts.Topic)
	if err != nil {
		return err
	}

	// 2. 書き出し先が無ければ JSON を出して終わりなのだ
	if opts.OutputDir == "" {
		out, err := json.MarshalIndent(story, "", "  ")
		if err != nil {
			return fmt.Errorf("物語のエンコードに失敗しました: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	// 3. 挿絵の生成
	images := make([]domain.Image, story.PageCount())
	if opts.WithImages {
		images, err = appCtx.Workflow.BuildBookRunner().Run(ctx, story)
		if err != nil {
			return err
		}
	}

	// 4. 書き出し
	pub, err := appCtx.Workflow.BuildPublishRunner()
	if err != nil {
		return err
	}
	result, err := pub.Run(ctx, story, images, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("絵本の書き出しに失敗しました: %w", err)
	}

	slog.Info("完了なのだ！絵本ができあがったのだよ。",
		"title", story.Title,
		"markdown", result.MarkdownPath,
		"html", result.HTMLPath,
		"images", len(result.ImagePaths),
	)
	return nil
}
