package illustration

import (
	"sort"
	"strconv"
	"sync"

	"github.com/shouni/go-picture-book/pkg/domain"

	"github.com/patrickmn/go-cache"
)

// State はキャッシュエントリの状態です。
type State int

const (
	// StateAbsent はまだ取得が始まっていない状態です。
	StateAbsent State = iota
	// StatePending は取得中の状態です。
	StatePending
	// StatePresent は画像が格納済みの状態です。
	StatePresent
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePresent:
		return "present"
	default:
		return "absent"
	}
}

type entry struct {
	state State
	image domain.Image
}

// Cache はページ番号をキーにした挿絵のキャッシュです。
// 1つの物語の間は期限切れにならず、新しい物語が始まるとキャッシュごと破棄されます。
type Cache struct {
	mu    sync.Mutex
	items *cache.Cache
}

// NewCache は空のキャッシュを生成します。
func NewCache() *Cache {
	return &Cache{
		items: cache.New(cache.NoExpiration, 0),
	}
}

func key(index int) string {
	return strconv.Itoa(index)
}

func (c *Cache) load(index int) (entry, bool) {
	v, ok := c.items.Get(key(index))
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

// Claim は absent のエントリを pending にします。
// すでに pending か present の場合は false を返し、何もしません。
func (c *Cache) Claim(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Add(key(index), entry{state: StatePending}, cache.NoExpiration) == nil
}

// Store は取得した画像を格納します。
// すでに present の場合は上書きせず false を返します（最初の書き込みが勝つ）。
func (c *Cache) Store(index int, img domain.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.load(index); ok && e.state == StatePresent {
		return false
	}
	c.items.Set(key(index), entry{state: StatePresent, image: img}, cache.NoExpiration)
	return true
}

// Release は pending のエントリを absent に戻します。
func (c *Cache) Release(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.load(index); ok && e.state == StatePending {
		c.items.Delete(key(index))
	}
}

// Replace は present のエントリを編集結果で置き換えます。
// 他のページのエントリには触れません。present でない場合は false を返します。
func (c *Cache) Replace(index int, img domain.Image) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.load(index)
	if !ok || e.state != StatePresent {
		return false
	}
	c.items.Set(key(index), entry{state: StatePresent, image: img}, cache.NoExpiration)
	return true
}

// Get は present の画像を返します。
func (c *Cache) Get(index int) (domain.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.load(index)
	if !ok || e.state != StatePresent {
		return "", false
	}
	return e.image, true
}

// State はエントリの状態を返します。
func (c *Cache) State(index int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.load(index)
	if !ok {
		return StateAbsent
	}
	return e.state
}

// Len は pending を含むエントリ数を返します。
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

// Snapshot は present の画像をページ番号ごとにコピーして返します。
func (c *Cache) Snapshot() map[int]domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]domain.Image)
	for k, item := range c.items.Items() {
		e, ok := item.Object.(entry)
		if !ok || e.state != StatePresent {
			continue
		}
		i, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[i] = e.image
	}
	return out
}

// Indices は present のページ番号を昇順で返します。
func (c *Cache) Indices() []int {
	snap := c.Snapshot()
	indices := make([]int, 0, len(snap))
	for i := range snap {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}
