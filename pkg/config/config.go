package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultPageCount   = 5
	DefaultStylePrefix = "Children's picture book illustration, flat vector art, bold simple shapes, soft pastel colors, clean outlines, friendly rounded characters, no text, no letters"
	// DefaultPlaceholderURLFormat は %d にランダムなシード値が入るプレースホルダー画像の URL です。
	DefaultPlaceholderURLFormat = "https://picsum.photos/seed/%d/800/600"
	DefaultRateInterval         = 2 * time.Second
	DefaultRateBurst            = 2
	DefaultRequestTimeout       = 2 * time.Minute
	DefaultTemperature          = float32(0.7)
)

// Config は絵本生成の各コンポーネントを動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	GeminiModel  string // 物語（テキスト）生成用
	ImageModel   string // 挿絵の生成・編集用
	Temperature  float32

	// --- Generation Settings ---
	StoryMode            string // 物語テンプレートのモード（空ならフォニックス）
	PageCount            int
	StylePrefix          string
	PlaceholderURLFormat string
	RateInterval         time.Duration
	RateBurst            int

	// --- Timeout ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:          DefaultGeminiModel,
		ImageModel:           DefaultImageModel,
		Temperature:          DefaultTemperature,
		PageCount:            DefaultPageCount,
		StylePrefix:          DefaultStylePrefix,
		PlaceholderURLFormat: DefaultPlaceholderURLFormat,
		RateInterval:         DefaultRateInterval,
		RateBurst:            DefaultRateBurst,
		RequestTimeout:       DefaultRequestTimeout,
	}
}

// WithDefaults はゼロ値の項目をデフォルト値で埋めた Config を返します。
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.GeminiModel == "" {
		c.GeminiModel = d.GeminiModel
	}
	if c.ImageModel == "" {
		c.ImageModel = d.ImageModel
	}
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.PageCount <= 0 {
		c.PageCount = d.PageCount
	}
	if c.StylePrefix == "" {
		c.StylePrefix = d.StylePrefix
	}
	if c.PlaceholderURLFormat == "" {
		c.PlaceholderURLFormat = d.PlaceholderURLFormat
	}
	if c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	// RateInterval の 0 は「制限なし」として扱うのでそのまま残すのだ
	return c
}
