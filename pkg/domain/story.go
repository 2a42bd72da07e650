package domain

import (
	"strings"
)

// Phase はセッションの進行段階を表します。
type Phase string

const (
	// PhaseSetup はトピック入力待ちの初期状態です。
	PhaseSetup Phase = "SETUP"
	// PhaseGenerating は物語を生成中の一時的な状態です。
	PhaseGenerating Phase = "GENERATING"
	// PhaseReading は絵本を読んでいる状態です。
	PhaseReading Phase = "READING"
	// PhaseFinished は最後のページを読み終えた状態なのだ。
	PhaseFinished Phase = "FINISHED"
)

// Story は AI モデルから返される絵本全体の構造です。
// Pages の並び順がそのまま読む順番になります。
type Story struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Pages []Page `json:"pages"`
}

// Page は絵本の1ページ（1文と1枚の挿絵）を保持します。
// 生成された画像はここには持たず、セッションの画像キャッシュだけが保持します。
type Page struct {
	Text             string `json:"text"`
	ImageDescription string `json:"imageDescription"`
}

// PageCount はページ数を返します。
func (s *Story) PageCount() int {
	if s == nil {
		return 0
	}
	return len(s.Pages)
}

// HasPage は index が有効なページを指しているかを返します。
func (s *Story) HasPage(index int) bool {
	return index >= 0 && index < s.PageCount()
}

// Validate は生成結果として最低限使える内容かを確認します。
func (s *Story) Validate() error {
	if s == nil || len(s.Pages) == 0 {
		return ErrGenerationEmpty
	}
	for i, p := range s.Pages {
		if strings.TrimSpace(p.Text) == "" {
			return &PageError{Index: i, Err: ErrGenerationEmpty}
		}
	}
	return nil
}

// Normalize はタイトルや各ページの前後の空白を取り除きます。
func (s *Story) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	for i := range s.Pages {
		s.Pages[i].Text = strings.TrimSpace(s.Pages[i].Text)
		s.Pages[i].ImageDescription = strings.TrimSpace(s.Pages[i].ImageDescription)
		if s.Pages[i].ImageDescription == "" {
			// 挿絵の説明が無いページは本文をそのまま使うのだ
			s.Pages[i].ImageDescription = s.Pages[i].Text
		}
	}
}
