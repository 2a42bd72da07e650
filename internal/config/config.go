package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	pbconfig "github.com/shouni/go-picture-book/pkg/config"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultListenAddr      = ":8080"
	DefaultSessionTTL      = 30 * time.Minute
	DefaultCORSOrigins     = "http://localhost:3000,http://localhost:8080"
	DefaultLogLevel        = "info"
	DefaultOutputDir       = "output"
	DefaultConcurrency     = 2
	DefaultSessionSecret   = "picture-book-dev-secret"
	DefaultGenerateTimeout = 3 * time.Minute
)

// Config はアプリケーション全体の環境設定（APIキーやサーバー設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	StylePrefix      string
	StoryMode        string
	PageCount        int

	ListenAddr    string
	SessionSecret string
	SessionTTL    time.Duration
	CORSOrigins   []string
	LogLevel      string

	// SecureCookie が true の場合はセッション Cookie を HTTPS でのみ送るのだ
	SecureCookie    bool
	// GenerateTimeout は HTTP 経由の物語生成1回にかける上限時間です。
	GenerateTimeout time.Duration

	Options GenerateOptions
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
// .env が無い場合は環境変数だけを使います。
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env を読み込めなかったので環境変数だけを使うのだ", "error", err)
	}

	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", pbconfig.DefaultGeminiModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", pbconfig.DefaultImageModel),
		StylePrefix:      envutil.GetEnv("STYLE_PREFIX", pbconfig.DefaultStylePrefix),
		StoryMode:        envutil.GetEnv("STORY_MODE", ""),
		PageCount:        atoiOr(envutil.GetEnv("PAGE_COUNT", ""), pbconfig.DefaultPageCount),

		ListenAddr:    envutil.GetEnv("LISTEN_ADDR", DefaultListenAddr),
		SessionSecret: envutil.GetEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionTTL:    durationOr(envutil.GetEnv("SESSION_TTL", ""), DefaultSessionTTL),
		CORSOrigins:   splitList(envutil.GetEnv("CORS_ORIGINS", DefaultCORSOrigins)),
		LogLevel:      envutil.GetEnv("LOG_LEVEL", DefaultLogLevel),

		SecureCookie:    boolOr(envutil.GetEnv("SECURE_COOKIE", ""), false),
		GenerateTimeout: durationOr(envutil.GetEnv("GENERATE_TIMEOUT", ""), DefaultGenerateTimeout),
	}
	return cfg
}

// Library は pkg/config の設定に変換します。CLI フラグの指定があればそちらを優先するのだ。
func (c *Config) Library() pbconfig.Config {
	lib := pbconfig.DefaultConfig()
	lib.GeminiAPIKey = c.GeminiAPIKey
	lib.GeminiModel = c.GeminiModel
	lib.ImageModel = c.GeminiImageModel
	lib.StylePrefix = c.StylePrefix
	lib.StoryMode = c.StoryMode
	lib.PageCount = c.PageCount

	if c.Options.AIModel != "" {
		lib.GeminiModel = c.Options.AIModel
	}
	if c.Options.ImageModel != "" {
		lib.ImageModel = c.Options.ImageModel
	}
	if c.Options.Mode != "" {
		lib.StoryMode = c.Options.Mode
	}
	if c.Options.PageCount > 0 {
		lib.PageCount = c.Options.PageCount
	}
	return lib.WithDefaults()
}

// UsesDefaultSessionSecret は Cookie の署名に公開されている開発用の鍵を使っているかを返します。
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// SlogLevel は LogLevel を slog.Level に変換します。
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 物語
	Topic     string // --topic
	Mode      string // --mode
	PageCount int    // --pages

	// 入出力
	InputFile  string // --input: 書き出し済みの story.json または book.md
	OutputDir  string // --output-dir
	WithImages bool   // --with-images
	WithHTML   bool   // --html

	// AI挙動設定
	AIModel     string        // --model: テキスト生成用のGeminiモデル
	ImageModel  string        // --image-model: 画像生成用のGeminiモデル
	Concurrency int           // --concurrency
	Timeout     time.Duration // --timeout
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func boolOr(s string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return b
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
