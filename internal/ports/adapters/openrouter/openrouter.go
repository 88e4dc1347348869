package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pkg/errors"

	"github.com/forPelevin/vclip/internal/domain/highlights"
	"github.com/forPelevin/vclip/internal/types"
)

type Adapter struct {
	key    string
	model  string
	client openai.Client
}

const (
	requestTimeout = 90 * time.Second
	defaultModel   = "deepseek/deepseek-chat"
)

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(normalizeBaseURL(baseURL)+"/api/v1/"),
		option.WithHeader("X-Title", "vclip"),
		option.WithRequestTimeout(requestTimeout),
		option.WithMaxRetries(2),
	)
	return &Adapter{key: apiKey, model: model, client: client}
}

const systemPrompt = "You are an expert YouTube content creator who specializes in identifying " +
	"the best moments from long-form videos that would work as engaging YouTube Shorts."

// Select asks the model for shortsN segment ranges. Replies that cannot be
// used fall back to the deterministic heuristic so a run still produces
// shorts. Indices are passed through unchecked.
func (a *Adapter) Select(
	ctx context.Context,
	sp types.Speech,
	shortsN int,
	minDur time.Duration,
	maxDur time.Duration,
) ([]types.ShortCandidate, error) {
	if shortsN <= 0 || len(sp.Segments) == 0 {
		return nil, nil
	}
	fallback := func() []types.ShortCandidate {
		return highlights.Fallback(sp, shortsN, minDur, maxDur)
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(sp, shortsN, minDur, maxDur)),
		},
		Model:       openai.ChatModel(a.model),
		Temperature: openai.Float(0.3),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Errorf("openrouter request failed (model=%s): %s", a.model, truncate(redactSecrets(err.Error(), a.key), 400))
	}
	if len(resp.Choices) == 0 {
		return fallback(), nil
	}
	clean, err := extractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return fallback(), nil
	}

	var out struct {
		Shorts []types.ShortCandidate `json:"shorts"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return fallback(), nil
	}

	res := make([]types.ShortCandidate, 0, min(len(out.Shorts), shortsN))
	seen := make(map[[2]int]struct{}, len(out.Shorts))
	for _, c := range out.Shorts {
		key := [2]int{c.StartSegmentIndex, c.EndSegmentIndex}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			c.Title = "Highlight"
		}
		c.Description = strings.TrimSpace(c.Description)
		res = append(res, c)
		if len(res) >= shortsN {
			break
		}
	}
	if len(res) == 0 {
		return fallback(), nil
	}
	return res, nil
}

func buildPrompt(sp types.Speech, shortsN int, minDur, maxDur time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the numbered transcript segments below and pick up to %d segment ranges "+
		"that would make excellent YouTube Shorts.\n", shortsN)
	fmt.Fprintf(&b, "Each range must last between %.0f and %.0f seconds.\n", minDur.Seconds(), maxDur.Seconds())
	b.WriteString("Look for self-contained moments with a clear beginning and end, engaging hooks, " +
		"practical tips, stories and thought-provoking statements.\n")
	b.WriteString("Return strictly valid JSON of the form " +
		`{"shorts":[{"start_segment_index":0,"end_segment_index":0,"title":"","subscribe_subtitle":"",` +
		`"description":"","tags":[],"estimated_duration":""}]}` + ". ")
	b.WriteString("Indices are 0-based and inclusive. Titles are at most 30 characters.\n\nSegments:\n")
	for i, s := range sp.Segments {
		fmt.Fprintf(&b, "[%d] (%.1f-%.1f) %s\n", i, s.Start, s.End, strings.TrimSpace(s.Text))
	}
	return b.String()
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", errors.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
