// Package news is the built-in headlines skill. It declares nothing in its
// metadata and registers no marker list, so the registry discovers its
// commands by reflection.
package news

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bytedance/gg/gconv"
	"github.com/bytedance/sonic"

	"github.com/edisonhq/edison/internal/skill"
)

func init() {
	skill.MustRegisterService("skills/news/service", "NewsService",
		func(args []any, kwargs map[string]any) (any, error) {
			return NewNewsService(kwargs), nil
		})
}

const apiURL = "https://newsapi.org/v2/top-headlines"

type NewsService struct {
	apiKey string
	limit  int
	client *http.Client
}

func NewNewsService(kwargs map[string]any) *NewsService {
	apiKey := gconv.To[string](kwargs["api_key"])
	if apiKey == "" {
		apiKey = os.Getenv("NEWS_API_KEY")
	}
	limit := gconv.To[int](kwargs["limit"])
	if limit <= 0 {
		limit = 5
	}

	return &NewsService{
		apiKey: apiKey,
		limit:  limit,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetNews returns the top headlines, optionally filtered by topic.
func (s *NewsService) GetNews(topic string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("news service not configured")
	}

	query := url.Values{}
	query.Set("apiKey", s.apiKey)
	query.Set("pageSize", fmt.Sprint(s.limit))
	if topic = strings.TrimSpace(topic); topic != "" {
		query.Set("q", topic)
	} else {
		query.Set("country", "us")
	}

	resp, err := s.client.Get(apiURL + "?" + query.Encode())
	if err != nil {
		return "", fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read news response: %w", err)
	}

	var payload struct {
		Articles []struct {
			Title  string `json:"title"`
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse news response: %w", err)
	}
	if len(payload.Articles) == 0 {
		return "No headlines found.", nil
	}

	var b strings.Builder
	b.WriteString("📰 Top headlines:\n")
	for i, article := range payload.Articles {
		if i >= s.limit {
			break
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, article.Title, article.Source.Name)
	}
	return b.String(), nil
}

// DetectRequest answers free text asking for news.
func (s *NewsService) DetectRequest(text string) (string, error) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "news") && !strings.Contains(lower, "headlines") {
		return "", nil
	}

	topic := ""
	if idx := strings.LastIndex(lower, " about "); idx >= 0 {
		topic = strings.Trim(strings.TrimSpace(text[idx+7:]), "?.!")
	}
	return s.GetNews(topic)
}
