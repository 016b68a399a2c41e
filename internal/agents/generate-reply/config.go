// internal/agents/generate-reply/config.go
package generatereply

import "time"

type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	// MinReplyLength guards against degenerate completions; anything
	// shorter falls back to a static prompt.
	MinReplyLength int
	// HistoryWindow caps how many prior messages are sent as context.
	HistoryWindow int
}

func LoadConfig() *Config {
	return &Config{
		Model:          "gpt-4o-mini",
		MaxTokens:      220,
		Temperature:    0.4,
		Timeout:        10 * time.Second,
		MinReplyLength: 5,
		HistoryWindow:  12,
	}
}
