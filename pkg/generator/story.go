package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/prompts"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// storySchema は物語生成で要求する JSON の形です。
var storySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"pages": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":             {Type: genai.TypeString},
					"imageDescription": {Type: genai.TypeString},
				},
				Required:         []string{"text", "imageDescription"},
				PropertyOrdering: []string{"text", "imageDescription"},
			},
		},
	},
	Required:         []string{"title", "pages"},
	PropertyOrdering: []string{"title", "pages"},
}

// GenerateStory はトピックから決まったページ数の短い物語を生成します。
// レスポンスに使える内容が無い場合は domain.ErrGenerationEmpty を返します。
func (c *Client) GenerateStory(ctx context.Context, topic string) (*domain.Story, error) {
	topic = strings.TrimSpace(topic)
	prompt, err := c.storyPrompt.Build(c.cfg.StoryMode, prompts.TemplateData{
		Topic:     topic,
		PageCount: c.cfg.PageCount,
	})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	slog.InfoContext(ctx, "Requesting story generation", "model", c.cfg.GeminiModel, "topic", topic, "pages", c.cfg.PageCount)

	resp, err := c.model.GenerateContent(ctx, c.cfg.GeminiModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   storySchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoryFailed, err)
	}

	story, err := parseStory(responseText(resp))
	if err != nil {
		return nil, err
	}
	if story.Title == "" {
		slog.WarnContext(ctx, "Story has no title, using the topic instead", "topic", topic)
		story.Title = topic
	}
	if story.PageCount() != c.cfg.PageCount {
		slog.WarnContext(ctx, "Story page count differs from the requested count",
			"requested", c.cfg.PageCount,
			"actual", story.PageCount(),
		)
	}
	story.ID = uuid.NewString()

	slog.InfoContext(ctx, "Story generated", "story_id", story.ID, "title", story.Title, "pages", story.PageCount())
	return story, nil
}

// parseStory は AI 応答から JSON を取り出して Story に変換します。
func parseStory(raw string) (*domain.Story, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrGenerationEmpty
	}

	var rawJSON string
	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		first := strings.Index(raw, "{")
		last := strings.LastIndex(raw, "}")
		if first != -1 && last > first {
			rawJSON = raw[first : last+1]
		} else {
			rawJSON = raw
		}
	}

	var story domain.Story
	if err := json.Unmarshal([]byte(rawJSON), &story); err != nil {
		return nil, fmt.Errorf("%w: JSONの解析に失敗しました (応答抜粋: %q): %v", domain.ErrGenerationEmpty, truncateString(raw, 200), err)
	}
	story.Normalize()
	if err := story.Validate(); err != nil {
		return nil, err
	}
	return &story, nil
}

// responseText は思考パートを除いたテキストパートを連結して返します。
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
