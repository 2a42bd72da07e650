package minigame

import (
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// デフォルト値の定義
const (
	DefaultSpawnInterval = time.Second
	DefaultLifetime      = 6 * time.Second
	DefaultMaxBalloons   = 8
)

// Colors は風船に割り当てる色の候補です。
var Colors = []string{"red", "orange", "yellow", "green", "blue", "purple", "pink"}

// Config は風船割りゲームの設定です。
type Config struct {
	SpawnInterval time.Duration
	Lifetime      time.Duration
	MaxBalloons   int
}

// DefaultConfig は推奨されるデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		SpawnInterval: DefaultSpawnInterval,
		Lifetime:      DefaultLifetime,
		MaxBalloons:   DefaultMaxBalloons,
	}
}

func (c Config) withDefaults() Config {
	if c.SpawnInterval <= 0 {
		c.SpawnInterval = DefaultSpawnInterval
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLifetime
	}
	if c.MaxBalloons <= 0 {
		c.MaxBalloons = DefaultMaxBalloons
	}
	return c
}

// Balloon は画面上の風船1つを表します。X は 0.0〜1.0 の横位置です。
type Balloon struct {
	ID        int       `json:"id"`
	Color     string    `json:"color"`
	X         float64   `json:"x"`
	SpawnedAt time.Time `json:"spawnedAt"`
}

// State はある時点のゲームの状態です。
type State struct {
	Balloons []Balloon `json:"balloons"`
	Score    int       `json:"score"`
}

// Game は絵本を読み終えた後に遊ぶ風船割りゲームです。
// 描画は持たず、出現・消滅・得点だけを管理します。
type Game struct {
	mu       sync.Mutex
	cfg      Config
	limiter  *rate.Limiter
	balloons []Balloon
	nextID   int
	score    int
}

// New はゲームを初期化します。
func New(cfg Config) *Game {
	cfg = cfg.withDefaults()
	return &Game{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.SpawnInterval), 1),
		nextID:  1,
	}
}

// Tick は時刻 now までの経過を反映します。
// 寿命を過ぎた風船を取り除き、出現間隔が経っていれば風船を1つ追加します。
func (g *Game) Tick(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire(now)

	if len(g.balloons) >= g.cfg.MaxBalloons {
		return
	}
	if !g.limiter.AllowN(now, 1) {
		return
	}
	g.balloons = append(g.balloons, Balloon{
		ID:        g.nextID,
		Color:     Colors[rand.IntN(len(Colors))],
		X:         rand.Float64(),
		SpawnedAt: now,
	})
	g.nextID++
}

// Pop は風船を割って得点を加算します。存在しない ID の場合は false を返します。
func (g *Game) Pop(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, b := range g.balloons {
		if b.ID == id {
			g.balloons = append(g.balloons[:i], g.balloons[i+1:]...)
			g.score++
			return true
		}
	}
	return false
}

// Score は現在の得点を返します。
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Snapshot は Tick を適用した上で現在の状態のコピーを返します。
func (g *Game) Snapshot(now time.Time) State {
	g.Tick(now)

	g.mu.Lock()
	defer g.mu.Unlock()
	balloons := make([]Balloon, len(g.balloons))
	copy(balloons, g.balloons)
	return State{Balloons: balloons, Score: g.score}
}

func (g *Game) expire(now time.Time) {
	kept := g.balloons[:0]
	for _, b := range g.balloons {
		if now.Sub(b.SpawnedAt) < g.cfg.Lifetime {
			kept = append(kept, b)
		}
	}
	g.balloons = kept
}
