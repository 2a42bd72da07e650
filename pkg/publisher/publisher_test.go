package publisher

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shouni/go-picture-book/pkg/domain"
)

type memoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{files: make(map[string][]byte), types: make(map[string]string)}
}

func (w *memoryWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[filepath.ToSlash(path)] = data
	w.types[filepath.ToSlash(path)] = contentType
	return nil
}

func (w *memoryWriter) find(suffix string) ([]byte, bool) {
	for p, data := range w.files {
		if strings.HasSuffix(p, suffix) {
			return data, true
		}
	}
	return nil, false
}

func testBook() (*domain.Story, []domain.Image) {
	story := &domain.Story{
		ID:    "story-1",
		Title: "A Brave Dog",
		Pages: []domain.Page{
			{Text: "The dog ran.", ImageDescription: "a dog running"},
			{Text: "The dog sat.", ImageDescription: "a dog sitting"},
		},
	}
	images := []domain.Image{
		domain.NewDataURI("image/png", []byte("png-bytes")),
		"https://picsum.photos/seed/42/800/600",
	}
	return story, images
}

func TestNewBookPublisher_RequiresWriter(t *testing.T) {
	if _, err := NewBookPublisher(nil); err == nil {
		t.Error("nil writer should fail")
	}
}

func TestPublish(t *testing.T) {
	w := newMemoryWriter()
	p, err := NewBookPublisher(w)
	if err != nil {
		t.Fatalf("NewBookPublisher() error = %v", err)
	}
	story, images := testBook()

	result, err := p.Publish(context.Background(), story, images, Options{OutputDir: "out", WithHTML: true})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(result.ImagePaths) != 1 || !strings.HasSuffix(filepath.ToSlash(result.ImagePaths[0]), "images/page_1.png") {
		t.Errorf("ImagePaths = %v", result.ImagePaths)
	}
	data, ok := w.find("images/page_1.png")
	if !ok || string(data) != "png-bytes" {
		t.Errorf("page image = %q, %v", data, ok)
	}

	raw, ok := w.find("story.json")
	if !ok {
		t.Fatal("story.json not written")
	}
	var decoded domain.Story
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("story.json is not valid JSON: %v", err)
	}
	if decoded.Title != story.Title || len(decoded.Pages) != 2 {
		t.Errorf("decoded story = %+v", decoded)
	}

	md, ok := w.find("book.md")
	if !ok {
		t.Fatal("book.md not written")
	}
	for _, want := range []string{
		"# A Brave Dog",
		"## Page 1",
		"![a dog running](images/page_1.png)",
		"![a dog sitting](https://picsum.photos/seed/42/800/600)",
		"The dog sat.",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("book.md missing %q", want)
		}
	}

	doc, ok := w.find("book.html")
	if !ok || result.HTMLPath == "" {
		t.Fatal("book.html not written")
	}
	if !strings.Contains(string(doc), "<title>A Brave Dog</title>") || !strings.Contains(string(doc), "<h1>A Brave Dog</h1>") {
		t.Errorf("unexpected HTML:\n%s", doc)
	}
}

func TestPublish_WithoutHTML(t *testing.T) {
	w := newMemoryWriter()
	p, _ := NewBookPublisher(w)
	story, images := testBook()

	result, err := p.Publish(context.Background(), story, images, Options{OutputDir: "out"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.HTMLPath != "" {
		t.Errorf("HTMLPath = %q, want empty", result.HTMLPath)
	}
	if _, ok := w.find("book.html"); ok {
		t.Error("book.html should not be written")
	}
}

func TestPublish_Errors(t *testing.T) {
	p, _ := NewBookPublisher(newMemoryWriter())
	story, _ := testBook()

	if _, err := p.Publish(context.Background(), nil, nil, Options{OutputDir: "out"}); err == nil {
		t.Error("nil story should fail")
	}
	if _, err := p.Publish(context.Background(), story, nil, Options{}); err == nil {
		t.Error("empty output dir should fail")
	}
}

func TestBuildMarkdown_NoImages(t *testing.T) {
	story, _ := testBook()
	md := BuildMarkdown(story, nil)
	if strings.Contains(md, "![") {
		t.Errorf("markdown should not reference images:\n%s", md)
	}
	if !strings.Contains(md, "<!-- imageDescription: "+story.Pages[0].ImageDescription+" -->") {
		t.Errorf("markdown should keep the image description:\n%s", md)
	}
	if !strings.Contains(md, "The dog ran.") {
		t.Errorf("markdown missing page text:\n%s", md)
	}
}

func TestLocalWriter(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "file.txt")

	w := NewLocalWriter()
	if err := w.Write(context.Background(), target, strings.NewReader("hello"), "text/plain"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Write(ctx, target, strings.NewReader("x"), ""); err == nil {
		t.Error("Write() with cancelled context should fail")
	}
}
