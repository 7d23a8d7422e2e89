package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/config"
	"chat-relay/internal/domain"
)

// chatMessage is one turn in the wire format shared by chat-completions APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient calls the OpenAI chat completions API. One request per reply,
// no streaming, no retries.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewOpenAIClient(cfg config.Config, logger *logrus.Logger) *OpenAIClient {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		apiKey:     cfg.LLM.APIKey,
		model:      cfg.LLM.Model,
		baseURL:    cfg.LLM.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GenerateReply posts the full ordered history and returns the first choice.
func (c *OpenAIClient) GenerateReply(ctx context.Context, history []domain.Message) (string, error) {
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		messages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		detail := "request failed"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			detail = "request timed out"
		}
		return "", &UpstreamError{Detail: detail, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The body can echo request details; keep only a bounded prefix
		// and never the credentials we sent.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithField("status", resp.StatusCode).Warn("llm upstream rejected request")
		return "", &UpstreamError{Status: resp.StatusCode, Detail: string(b)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: "undecodable response body", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: "response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ Client = (*OpenAIClient)(nil)
