package config

import "time"

// Defaults for the completion backend and session store. History limit and
// the fallback keyword table vary per deployment; these are the values this
// deployment ships with.
const (
	DefaultModel           = "gpt-4o-mini"
	DefaultAPIBase         = "https://api.openai.com/v1"
	DefaultTemperature     = 0.7
	DefaultRequestTimeout  = 20 * time.Second
	DefaultHistoryLimit    = 80
	DefaultTranscriptLimit = 10

	DefaultSystemPrompt = "You are a personal day-to-day assistant. Keep replies concise, helpful," +
		" and a little playful. You can answer in Hebrew when the user writes in Hebrew."
)

// Config holds application configuration
type Config struct {
	Model           string        // chat completion model identifier
	APIBase         string        // base URL of the chat-completion API
	APIKey          string        // bearer token; blank disables the backend
	Temperature     float64       // sampling temperature sent with each request
	RequestTimeout  time.Duration // single-attempt bound on the backend call
	HistoryLimit    int           // maximum messages retained per session
	TranscriptLimit int           // recent messages sent to the backend
	SystemPrompt    string        // persona prompt prepended to every transcript
	Debug           bool
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Model:           DefaultModel,
		APIBase:         DefaultAPIBase,
		Temperature:     DefaultTemperature,
		RequestTimeout:  DefaultRequestTimeout,
		HistoryLimit:    DefaultHistoryLimit,
		TranscriptLimit: DefaultTranscriptLimit,
		SystemPrompt:    DefaultSystemPrompt,
	}
}
