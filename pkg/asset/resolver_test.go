package asset

import (
	"strings"
	"testing"
)

func TestPageImageName(t *testing.T) {
	tests := []struct {
		index    int
		mimeType string
		want     string
	}{
		{0, "image/png", "images/page_1.png"},
		{1, "image/jpeg", "images/page_2.jpg"},
		{4, "image/webp", "images/page_5.webp"},
		{2, "application/octet-stream", "images/page_3.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := PageImageName(tt.index, tt.mimeType)
			if err != nil {
				t.Fatalf("PageImageName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageImageName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageFileRegex(t *testing.T) {
	for _, name := range []string{"page_1.png", "page_12.jpg", "page_3.webp"} {
		if !PageFileRegex.MatchString(name) {
			t.Errorf("%q should match", name)
		}
	}
	for _, name := range []string{"page.png", "panel_1.png", "page_1.txt", "xpage_1.png"} {
		if PageFileRegex.MatchString(name) {
			t.Errorf("%q should not match", name)
		}
	}
}

func TestResolveOutputPath_RequiresDir(t *testing.T) {
	if _, err := ResolveOutputPath("  ", "book.md"); err == nil {
		t.Error("empty base dir should fail")
	}
}

func TestResolveOutputPath_LocalDir(t *testing.T) {
	got, err := ResolveOutputPath("output", "images/page_1.png")
	if err != nil {
		t.Fatalf("ResolveOutputPath() error = %v", err)
	}
	if !strings.HasPrefix(got, "output") || !strings.HasSuffix(got, "page_1.png") {
		t.Errorf("ResolveOutputPath() = %q", got)
	}
}
