package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
	"chat-relay/internal/llm"
)

type fakeMessageRepo struct {
	messages []domain.Message
	nextID   int64
}

func (r *fakeMessageRepo) Init(ctx context.Context) error { return nil }

func (r *fakeMessageRepo) Append(ctx context.Context, userID int64, role domain.Role, content string) (*domain.Message, error) {
	r.nextID++
	msg := domain.Message{
		ID:        r.nextID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	r.messages = append(r.messages, msg)
	return &msg, nil
}

func (r *fakeMessageRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for _, msg := range r.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	reply   string
	err     error
	gotHist []domain.Message
}

func (g *fakeGenerator) GenerateReply(ctx context.Context, history []domain.Message) (string, error) {
	g.gotHist = history
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestChatService_SendSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeMessageRepo{}
	gen := &fakeGenerator{reply: "hello"}
	svc := NewChatService(repo, gen, quietLogger())

	reply, err := svc.Send(context.Background(), 1, "hi there")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "hi there", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "hello", history[1].Content)

	// The generator must see the user message it is answering.
	require.Len(t, gen.gotHist, 1)
	assert.Equal(t, "hi there", gen.gotHist[0].Content)
}

func TestChatService_SendGeneratorFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeMessageRepo{}
	gen := &fakeGenerator{err: &llm.UpstreamError{Detail: "request timed out"}}
	svc := NewChatService(repo, gen, quietLogger())

	_, err := svc.Send(context.Background(), 1, "hi there")
	var upstreamErr *llm.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)

	// The user message survives the failed generation; no assistant
	// message is written.
	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RoleUser, history[0].Role)
}

func TestChatService_SendEmptyContent(t *testing.T) {
	t.Parallel()

	svc := NewChatService(&fakeMessageRepo{}, &fakeGenerator{reply: "x"}, quietLogger())

	_, err := svc.Send(context.Background(), 1, "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	history, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatService_HistoryEmpty(t *testing.T) {
	t.Parallel()

	svc := NewChatService(&fakeMessageRepo{}, &fakeGenerator{}, quietLogger())

	history, err := svc.History(context.Background(), 99)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
