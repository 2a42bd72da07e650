package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-picture-book/pkg/domain"
)

// ResolveImages は Markdown の画像参照を domain.Image に変換します。
// http(s) の URL はそのまま使い、相対パスは baseDir からの画像ファイルとして読み込んで data URI にします。
// 読み込めない参照は空のまま残します。
func ResolveImages(ctx context.Context, r InputReader, baseDir string, refs []string) []domain.Image {
	if r == nil {
		r = LocalReader{}
	}
	images := make([]domain.Image, len(refs))
	for i, ref := range refs {
		if ref == "" {
			continue
		}
		if isRemoteURL(ref) {
			images[i] = domain.Image(ref)
			continue
		}

		img, err := readImage(ctx, r, filepath.Join(baseDir, filepath.FromSlash(ref)))
		if err != nil {
			slog.WarnContext(ctx, "画像を読み込めなかったのでスキップするのだ", "ref", ref, "error", err)
			continue
		}
		images[i] = img
	}
	return images
}

func readImage(ctx context.Context, r InputReader, fullPath string) (domain.Image, error) {
	rc, err := r.Open(ctx, fullPath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(fullPath)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	return domain.NewDataURI(mimeType, data), nil
}

func isRemoteURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
