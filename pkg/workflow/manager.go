package workflow

import (
	"fmt"

	"github.com/shouni/go-picture-book/pkg/config"
	"github.com/shouni/go-picture-book/pkg/generator"
	"github.com/shouni/go-picture-book/pkg/parser"
	"github.com/shouni/go-picture-book/pkg/publisher"
	"github.com/shouni/go-picture-book/pkg/runner"
	"github.com/shouni/go-picture-book/pkg/session"
)

// Manager は、絵本生成の各工程を担う Runner 群とセッションを構築・管理します。
type Manager struct {
	cfg         config.Config
	gen         *generator.Client
	writer      publisher.OutputWriter
	reader      parser.InputReader
	concurrency int
	withHTML    bool
	sessionOpts session.Options
}

// New は、設定と Gemini クライアントを基に新しい Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.Model == nil {
		return nil, fmt.Errorf("Model は必須です")
	}

	cfg := args.Config.WithDefaults()
	gen, err := generator.NewClient(args.Model, cfg, args.StoryPrompt, args.ImagePrompt)
	if err != nil {
		return nil, fmt.Errorf("生成エンジンの初期化に失敗しました: %w", err)
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.NewLocalWriter()
	}

	reader := args.Reader
	if reader == nil {
		reader = parser.LocalReader{}
	}

	return &Manager{
		cfg:         cfg,
		gen:         gen,
		writer:      writer,
		reader:      reader,
		concurrency: args.Concurrency,
		withHTML:    args.WithHTML,
		sessionOpts: session.Options{
			RequestTimeout: cfg.RequestTimeout,
			Game:           args.Game,
		},
	}, nil
}

// Config は defaults 適用済みの設定を返します。
func (m *Manager) Config() config.Config {
	return m.cfg
}

// Generator は共有している生成エンジンを返します。
func (m *Manager) Generator() generator.Generator {
	return m.gen
}

// BuildStoryRunner は、物語生成を担当する Runner を作成します。
func (m *Manager) BuildStoryRunner() StoryRunner {
	return runner.NewStoryRunner(m.gen)
}

// BuildBookRunner は、全ページの挿絵生成を担当する Runner を作成します。
func (m *Manager) BuildBookRunner() BookRunner {
	return runner.NewBookRunner(m.gen, m.cfg.RequestTimeout, m.concurrency)
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	pub, err := publisher.NewBookPublisher(m.writer)
	if err != nil {
		return nil, fmt.Errorf("パブリッシャーの初期化に失敗しました: %w", err)
	}
	return runner.NewDefaultPublisherRunner(pub, m.withHTML), nil
}

// BuildLoadRunner は、書き出し済みの絵本を読み込む Runner を作成します。
func (m *Manager) BuildLoadRunner() LoadRunner {
	return runner.NewLoadRunner(m.reader)
}

// NewSession は、1人の読者向けの新しい絵本セッションを作成します。
// すべてのセッションが同じ生成エンジンを共有します。
func (m *Manager) NewSession() (*session.Session, error) {
	return session.New(m.gen, m.sessionOpts)
}
