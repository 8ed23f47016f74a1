package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ChatPilot/internal/config"
	"ChatPilot/internal/session"
)

// Client calls an OpenAI-compatible chat-completions API. It reports
// unavailability instead of returning errors: any transport failure, non-2xx
// status, timeout, or empty response is a normal "no answer" outcome that the
// caller covers with a local reply.
type Client struct {
	apiKey       string
	apiBase      string
	model        string
	temperature  float64
	systemPrompt string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a completion client from configuration. The request
// timeout bounds the single attempt made per call.
func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	return &Client{
		apiKey:       cfg.APIKey,
		apiBase:      strings.TrimRight(cfg.APIBase, "/"),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:       logger,
	}
}

// Generate asks the backend for a reply to the latest user text given the
// recent transcript. ok is false when no answer could be produced; Generate
// never returns an error.
func (c *Client) Generate(ctx context.Context, transcript []session.Message, latest string) (reply string, ok bool) {
	if strings.TrimSpace(c.apiKey) == "" {
		c.logger.Warn("api key missing, using local replies")
		return "", false
	}

	messages := make([]ChatMessage, 0, len(transcript)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: c.systemPrompt})
	for _, msg := range transcript {
		role := "user"
		if msg.Role == session.RoleBot {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: latest})

	reqBody := Request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		c.logger.Error("failed to marshal request", "error", err)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.Error("failed to create request", "error", err)
		return "", false
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("completion request failed", "error", err)
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read response", "error", err)
		return "", false
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("completion API error", "status", resp.Status, "body", string(body))
		return "", false
	}

	var apiResp Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.logger.Error("failed to unmarshal response", "error", err)
		return "", false
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		c.logger.Warn("completion response had no choices")
		return "", false
	}

	return apiResp.Choices[0].Message.Content, true
}
