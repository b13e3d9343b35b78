// Package weather is the built-in current-conditions skill backed by the
// OpenWeather API.
package weather

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
	skill.MustRegisterService("skills/weather/service", "WeatherService",
		func(args []any, kwargs map[string]any) (any, error) {
			return NewWeatherService(kwargs), nil
		})
}

const apiURL = "http://api.openweathermap.org/data/2.5/weather"

type WeatherService struct {
	apiKey      string
	defaultCity string
	client      *http.Client
}

func NewWeatherService(kwargs map[string]any) *WeatherService {
	apiKey := gconv.To[string](kwargs["api_key"])
	if apiKey == "" {
		apiKey = os.Getenv("OPENWEATHER_API_KEY")
	}
	city := gconv.To[string](kwargs["default_city"])
	if city == "" {
		city = os.Getenv("DEFAULT_CITY")
	}

	return &WeatherService{
		apiKey:      apiKey,
		defaultCity: city,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SkillCommands is the authoritative command list for this skill.
func (s *WeatherService) SkillCommands() []string {
	return []string{"DetectRequest", "GetWeather"}
}

// GetWeather returns a one-line report of the current conditions in city,
// falling back to the configured default city.
func (s *WeatherService) GetWeather(city string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("weather service not configured")
	}

	city = strings.TrimSpace(city)
	if city == "" {
		city = s.defaultCity
	}
	if city == "" {
		return "", fmt.Errorf("no city given and no default configured")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", s.apiKey)
	query.Set("units", "metric")

	resp, err := s.client.Get(apiURL + "?" + query.Encode())
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read weather response: %w", err)
	}

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse weather response: %w", err)
	}

	description := ""
	emoji := "🌤️"
	if len(payload.Weather) > 0 {
		description = strings.ToUpper(payload.Weather[0].Description[:1]) + payload.Weather[0].Description[1:]
		emoji = conditionEmoji(payload.Weather[0].Main)
	}

	return fmt.Sprintf("%s %s in %s: %.1f°C (feels like %.1f°C), humidity %d%%, wind %.1f m/s",
		emoji, description, payload.Name,
		payload.Main.Temp, payload.Main.FeelsLike,
		payload.Main.Humidity, payload.Wind.Speed), nil
}

// DetectRequest answers free text that looks like a weather question and
// stays silent otherwise.
func (s *WeatherService) DetectRequest(text string) (string, error) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "weather") && !strings.Contains(lower, "forecast") {
		return "", nil
	}

	city := ""
	if idx := strings.LastIndex(lower, " in "); idx >= 0 {
		city = strings.Trim(strings.TrimSpace(text[idx+4:]), "?.!")
	}
	return s.GetWeather(city)
}

func conditionEmoji(main string) string {
	switch strings.ToLower(main) {
	case "clear":
		return "☀️"
	case "clouds":
		return "☁️"
	case "rain":
		return "🌧️"
	case "drizzle":
		return "🌦️"
	case "thunderstorm":
		return "⛈️"
	case "snow":
		return "❄️"
	case "mist", "smoke", "haze", "fog":
		return "🌫️"
	default:
		return "🌤️"
	}
}
