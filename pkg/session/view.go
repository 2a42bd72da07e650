package session

import (
	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/illustration"
)

// View は表示層に渡すセッションのスナップショットです。
type View struct {
	Phase     domain.Phase `json:"phase"`
	Topic     string       `json:"topic,omitempty"`
	StoryID   string       `json:"storyId,omitempty"`
	Title     string       `json:"title,omitempty"`
	PageIndex int          `json:"pageIndex"`
	PageCount int          `json:"pageCount"`
	Text      string       `json:"text,omitempty"`
	Image     domain.Image `json:"image,omitempty"`
	// Loading は表示中のページの挿絵だけを見て判定します。
	Loading   bool   `json:"loading"`
	Editing   bool   `json:"editing"`
	Draft     string `json:"draft,omitempty"`
	LastError string `json:"lastError,omitempty"`
}

// View は現在の状態のスナップショットを返します。
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:     s.phase,
		Topic:     s.topic,
		Editing:   s.editing,
		Draft:     s.draft,
		LastError: s.lastError,
	}
	if s.story == nil {
		return v
	}

	v.StoryID = s.story.ID
	v.Title = s.story.Title
	v.PageIndex = s.index
	v.PageCount = s.story.PageCount()
	if s.phase != domain.PhaseReading {
		return v
	}

	v.Text = s.story.Pages[s.index].Text
	cache := s.prefetcher.Cache()
	if img, ok := cache.Get(s.index); ok {
		v.Image = img
	}
	v.Loading = cache.State(s.index) != illustration.StatePresent
	return v
}
