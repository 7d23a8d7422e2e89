package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-relay/internal/domain"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys archive destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
}

// Service archives rendered conversation transcripts to remote object storage.
type Service interface {
	UploadTranscript(ctx context.Context, key, body string, opts UploadOptions) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// TranscriptKey builds a unique object key for one user's transcript export.
func TranscriptKey(username string) string {
	return fmt.Sprintf("%s/transcript-%s.txt", username, uuid.NewString())
}

// RenderTranscript flattens a conversation into a line-oriented text body.
func RenderTranscript(username string, messages []domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcript for %s (%d messages)\n\n", username, len(messages))
	for _, msg := range messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.CreatedAt.Format(time.RFC3339), msg.Role, msg.Content)
	}
	return b.String()
}
