package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"chat-relay/internal/config"
	"chat-relay/internal/domain"
)

// ErrUnsupportedProvider is returned when the configured provider selector
// does not name a known backend.
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// UpstreamError reports a failed or timed-out call to the reply backend.
// Detail is safe to log; it never contains credentials.
type UpstreamError struct {
	Status int
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm upstream error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("llm upstream error: %s", e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client generates a single reply from an ordered conversation history.
type Client interface {
	GenerateReply(ctx context.Context, history []domain.Message) (string, error)
}

// Provider is the set of supported reply backends.
type Provider string

const ProviderOpenAI Provider = "openai"

// New builds the client selected by configuration. Unknown selectors fail
// here, at startup, rather than degrading silently on the first send.
func New(cfg config.Config, logger *logrus.Logger) (Client, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.LLM.Provider)
	}
}
