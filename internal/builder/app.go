package builder

import (
	"github.com/shouni/go-picture-book/internal/config"
	"github.com/shouni/go-picture-book/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、サーバー設定など）。
	Options  config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です（トピック、出力先など）。
	Workflow *workflow.Manager      // Workflowは、物語と挿絵の生成を担う Runner 群とセッションを構築します。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(cfg *config.Config, wf *workflow.Manager) AppContext {
	return AppContext{
		Config:   cfg,
		Options:  cfg.Options,
		Workflow: wf,
	}
}
