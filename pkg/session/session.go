package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/generator"
	"github.com/shouni/go-picture-book/pkg/illustration"
	"github.com/shouni/go-picture-book/pkg/minigame"

	"github.com/google/uuid"
)

// Options はセッションの動作設定です。
type Options struct {
	// RequestTimeout は挿絵1枚の取得にかける上限時間です。
	RequestTimeout time.Duration
	Game           minigame.Config
}

// Session は1人の読者の絵本セッションを管理するステートマシンです。
// 状態は mu で保護し、生成サービスへの呼び出しはロックを外して行います。
type Session struct {
	mu   sync.Mutex
	gen  generator.Generator
	opts Options

	phase      domain.Phase
	topic      string
	attempt    string
	story      *domain.Story
	index      int
	prefetcher *illustration.Prefetcher
	draft      string
	editing    bool
	lastError  string
	game       *minigame.Game
}

// New は SETUP 状態のセッションを生成します。
func New(gen generator.Generator, opts Options) (*Session, error) {
	if gen == nil {
		return nil, fmt.Errorf("Generator は必須です")
	}
	return &Session{
		gen:   gen,
		opts:  opts,
		phase: domain.PhaseSetup,
	}, nil
}

// Submit はトピックから物語を生成し、成功すれば READING に遷移します。
// 生成中は GENERATING となり、失敗すると SETUP に戻ってエラーを記録します。
func (s *Session) Submit(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	attempt, err := s.beginAttempt(topic)
	if err != nil {
		return err
	}
	return s.completeAttempt(ctx, attempt, topic)
}

// SubmitAsync は GENERATING への遷移までを同期的に行い、生成はバックグラウンドで実行します。
// HTTP のようにリクエストを待たせたくない呼び出し元向けなのだ。
func (s *Session) SubmitAsync(topic string, timeout time.Duration) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	attempt, err := s.beginAttempt(topic)
	if err != nil {
		return err
	}

	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		_ = s.completeAttempt(ctx, attempt, topic)
	}()
	return nil
}

func (s *Session) completeAttempt(ctx context.Context, attempt, topic string) error {
	logger := slog.With("attempt", attempt, "topic", topic)
	logger.InfoContext(ctx, "Story generation started")
	story, genErr := s.gen.GenerateStory(ctx, topic)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt != attempt || s.phase != domain.PhaseGenerating {
		logger.InfoContext(ctx, "Discarding story result for a superseded attempt")
		return ErrSuperseded
	}
	s.attempt = ""

	if genErr != nil {
		s.phase = domain.PhaseSetup
		s.lastError = FriendlyMessage(genErr)
		logger.WarnContext(ctx, "Story generation failed", "error", genErr)
		return genErr
	}

	if err := s.startReadingLocked(story); err != nil {
		s.phase = domain.PhaseSetup
		s.lastError = FriendlyMessage(domain.ErrGenerationEmpty)
		logger.WarnContext(ctx, "Story rejected", "error", err)
		return err
	}
	logger.InfoContext(ctx, "Story ready", "story_id", story.ID, "pages", story.PageCount())
	return nil
}

func (s *Session) beginAttempt(topic string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseSetup {
		return "", ErrInvalidPhase
	}
	s.phase = domain.PhaseGenerating
	s.topic = topic
	s.attempt = uuid.NewString()
	s.lastError = ""
	return s.attempt, nil
}

// startReadingLocked は新しい物語で READING を開始します。
// 画像キャッシュは必ず新しく作り直してから先読みを始めます。
func (s *Session) startReadingLocked(story *domain.Story) error {
	if story == nil {
		return domain.ErrGenerationEmpty
	}
	story.Normalize()
	if err := story.Validate(); err != nil {
		return err
	}
	if story.ID == "" {
		story.ID = uuid.NewString()
	}

	prefetcher, err := illustration.NewPrefetcher(story, illustration.NewCache(), s.gen, s.isActive, s.opts.RequestTimeout)
	if err != nil {
		return err
	}

	s.phase = domain.PhaseReading
	s.story = story
	s.index = 0
	s.prefetcher = prefetcher
	s.draft = ""
	s.editing = false
	prefetcher.OnStoryLoaded()
	return nil
}

// isActive は storyID が現在読んでいる物語かどうかを返します。
func (s *Session) isActive(storyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.story != nil && s.story.ID == storyID
}

// Next は次のページに進みます。最後のページからは FINISHED に遷移します。
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigableLocked(); err != nil {
		return err
	}

	s.draft = ""
	if s.index >= s.story.PageCount()-1 {
		s.phase = domain.PhaseFinished
		s.game = minigame.New(s.opts.Game)
		slog.Info("Story finished", "story_id", s.story.ID)
		return nil
	}
	s.index++
	s.prefetcher.OnNavigate(s.index)
	return nil
}

// Prev は前のページに戻ります。最初のページでは何もしません。
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigableLocked(); err != nil {
		return err
	}
	if s.index == 0 {
		return nil
	}

	s.draft = ""
	s.index--
	s.prefetcher.OnNavigate(s.index)
	return nil
}

func (s *Session) navigableLocked() error {
	if s.phase != domain.PhaseReading {
		return ErrInvalidPhase
	}
	if s.editing {
		return ErrEditInProgress
	}
	return nil
}

// SetDraft は現在のページに対する未送信の編集指示を保存します。
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseReading {
		return ErrInvalidPhase
	}
	s.draft = text
	return nil
}

// Edit は現在のページの挿絵を指示に従って編集します。
// instruction が空の場合は保存済みの下書きを使います。
// 失敗してもキャッシュの画像はそのまま残ります。
func (s *Session) Edit(ctx context.Context, instruction string) error {
	s.mu.Lock()
	if s.phase != domain.PhaseReading {
		s.mu.Unlock()
		return ErrInvalidPhase
	}
	if s.editing {
		s.mu.Unlock()
		return ErrEditInProgress
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = strings.TrimSpace(s.draft)
	}
	if instruction == "" {
		s.mu.Unlock()
		return ErrEmptyInstruction
	}
	current, ok := s.prefetcher.Cache().Get(s.index)
	if !ok {
		s.mu.Unlock()
		return ErrImageNotReady
	}

	s.editing = true
	s.lastError = ""
	story := s.story
	index := s.index
	cache := s.prefetcher.Cache()
	s.mu.Unlock()

	logger := slog.With("story_id", story.ID, "page_index", index)
	logger.InfoContext(ctx, "Edit started", "instruction", instruction)
	edited, err := s.gen.EditImage(ctx, current, instruction)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.story != story {
		logger.InfoContext(ctx, "Discarding edit result for an inactive story")
		return ErrSuperseded
	}
	s.editing = false

	if err != nil {
		s.lastError = FriendlyMessage(err)
		logger.WarnContext(ctx, "Edit failed", "error", err)
		return err
	}

	cache.Replace(index, edited)
	s.draft = ""
	logger.InfoContext(ctx, "Edit applied")
	return nil
}

// Restart はどの状態からでも SETUP に戻し、物語とキャッシュを破棄します。
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = domain.PhaseSetup
	s.topic = ""
	s.attempt = ""
	s.story = nil
	s.index = 0
	s.prefetcher = nil
	s.draft = ""
	s.editing = false
	s.lastError = ""
	s.game = nil
}

// DismissError は表示中のエラーを消します。
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// Game は FINISHED のときに風船割りゲームを返します。
func (s *Session) Game() (*minigame.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseFinished || s.game == nil {
		return nil, ErrInvalidPhase
	}
	return s.game, nil
}

// AwaitCurrentImage は現在のページの挿絵が揃うまで待ちます。
func (s *Session) AwaitCurrentImage(ctx context.Context) (domain.Image, error) {
	s.mu.Lock()
	if s.phase != domain.PhaseReading {
		s.mu.Unlock()
		return "", ErrInvalidPhase
	}
	prefetcher := s.prefetcher
	index := s.index
	s.mu.Unlock()

	return prefetcher.Await(ctx, index)
}

// Images は現在の物語で取得済みの挿絵をコピーして返します。
func (s *Session) Images() map[int]domain.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefetcher == nil {
		return map[int]domain.Image{}
	}
	return s.prefetcher.Cache().Snapshot()
}
