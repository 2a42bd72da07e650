package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-picture-book/pkg/domain"

	"google.golang.org/genai"
)

// imageModalities は画像生成モデルに要求する出力形式です。
var imageModalities = []string{"IMAGE", "TEXT"}

// GenerateImage はページの挿絵を1枚生成して data URI で返します。
// どのような失敗でもエラーは返さず、ランダムなプレースホルダー画像の URL を返します。
func (c *Client) GenerateImage(ctx context.Context, prompt string) domain.Image {
	logger := slog.With("model", c.cfg.ImageModel)

	if err := c.wait(ctx); err != nil {
		logger.WarnContext(ctx, "Rate limiter wait aborted, using placeholder", "error", err)
		return c.placeholder()
	}

	startTime := time.Now()
	parts := []*genai.Part{{Text: c.imagePrompt.BuildIllustration(prompt)}}
	resp, err := c.model.GenerateContent(ctx, c.cfg.ImageModel, userContent(parts), &genai.GenerateContentConfig{
		ResponseModalities: imageModalities,
	})
	if err != nil {
		logger.WarnContext(ctx, "Illustration request failed, using placeholder", "error", err)
		return c.placeholder()
	}

	blob := firstInlineImage(resp)
	if blob == nil {
		logger.WarnContext(ctx, "No inline image in response, using placeholder")
		return c.placeholder()
	}

	logger.InfoContext(ctx, "Illustration generated", "mime_type", blob.MIMEType, "bytes", len(blob.Data), "duration", time.Since(startTime).Round(time.Millisecond))
	return domain.NewDataURI(blob.MIMEType, blob.Data)
}

// EditImage は現在の挿絵と編集指示を送り、編集後の挿絵を返します。
// current が data URI でない場合はネットワークに出る前に domain.ErrInvalidImageFormat を返します。
func (c *Client) EditImage(ctx context.Context, current domain.Image, instruction string) (domain.Image, error) {
	mimeType, data, err := domain.ParseDataURI(current)
	if err != nil {
		return "", err
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", fmt.Errorf("%w: 編集指示が空です", domain.ErrEditFailed)
	}

	if err := c.wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEditFailed, err)
	}

	slog.InfoContext(ctx, "Requesting illustration edit", "model", c.cfg.ImageModel, "instruction", instruction)

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		{Text: c.imagePrompt.BuildEdit(instruction)},
	}
	resp, err := c.model.GenerateContent(ctx, c.cfg.ImageModel, userContent(parts), &genai.GenerateContentConfig{
		ResponseModalities: imageModalities,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEditFailed, err)
	}

	blob := firstInlineImage(resp)
	if blob == nil {
		return "", domain.ErrNoImageInEdit
	}
	return domain.NewDataURI(blob.MIMEType, blob.Data), nil
}

// wait はレートリミッターが設定されていれば待機します。
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func userContent(parts []*genai.Part) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: parts}}
}

// firstInlineImage はレスポンスを走査し、最初に見つかった画像パートを返します。
func firstInlineImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &genai.Blob{MIMEType: mimeType, Data: part.InlineData.Data}
		}
	}
	return nil
}
