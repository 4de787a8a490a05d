package sitesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/pkg/models"
)

// Request describes one per-site search.
type Request struct {
	Site         Site
	Symbol       string
	CompanyName  string
	Start, End   time.Time
	Keywords     []string
	DateVariants []string
}

// SiteSearcher runs the search against a single site. Implementations
// return raw items; the aggregator owns tagging, windowing, and dedup.
type SiteSearcher interface {
	Search(ctx context.Context, req Request) ([]models.SearchItem, error)
}

// SearchFunc adapts a function to the SiteSearcher interface.
type SearchFunc func(ctx context.Context, req Request) ([]models.SearchItem, error)

func (f SearchFunc) Search(ctx context.Context, req Request) ([]models.SearchItem, error) {
	return f(ctx, req)
}

// BackendSearcher queries an OpenAI-compatible responses endpoint that
// has web search capability and parses the JSON array it returns.
type BackendSearcher struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	model   string
}

func NewBackendSearcher(client *httpx.Client, baseURL, apiKey, model string) *BackendSearcher {
	return &BackendSearcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesReply struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (s *BackendSearcher) Search(ctx context.Context, req Request) ([]models.SearchItem, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + s.apiKey,
	}
	payload := responsesRequest{Model: s.model, Input: buildPrompt(req)}

	var reply responsesReply
	if err := s.client.PostJSON(ctx, s.baseURL+"/responses", headers, payload, &reply); err != nil {
		return nil, fmt.Errorf("site %s: %w", req.Site.Name, err)
	}

	var text strings.Builder
	for _, out := range reply.Output {
		for _, c := range out.Content {
			if c.Type == "output_text" {
				text.WriteString(c.Text)
			}
		}
	}

	items, err := parseItems(text.String())
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.Site.Name, err)
	}
	return items, nil
}

// buildPrompt asks for recent posts or articles about the company on
// one site, constrained to its domains and the date window, and demands
// a bare JSON array so the reply can be machine parsed.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "在 %s（域名限定 %s）搜索关于 %s（股票代码 %s）的内容。\n",
		req.Site.Name, strings.Join(req.Site.Domains, ", "), req.CompanyName, req.Symbol)
	fmt.Fprintf(&b, "时间范围：%s 至 %s。\n",
		req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "可组合的关键词：%s。\n", strings.Join(req.Keywords, "、"))
	if len(req.DateVariants) > 0 {
		fmt.Fprintf(&b, "日期可能写作：%s。\n", strings.Join(req.DateVariants, "、"))
	}
	b.WriteString(`只返回一个 JSON 数组，不要任何其他文字。每个元素包含字段：
author, datetime_local (格式 YYYY-MM-DD HH:MM), title_or_snippet, url。
没有结果时返回 []。`)
	return b.String()
}

// parseItems unmarshals the reply text, tolerating a markdown code
// fence around the array.
func parseItems(text string) ([]models.SearchItem, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil, nil
	}

	var items []models.SearchItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("parse search reply: %w", err)
	}
	return items, nil
}
