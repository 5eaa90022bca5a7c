package driving

import (
	"context"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// AskService answers a question against a workspace's documents with a
// streaming, citation-grounded response.
type AskService interface {
	// Ask runs the pipeline and returns a channel of ordered events:
	// zero or more token events, an optional citations event, then
	// exactly one terminal error or done event. The channel is closed
	// after the terminal event. Cancelling ctx stops generation and
	// skips persistence.
	Ask(ctx context.Context, question, workspaceID string, opts domain.AskOptions) (<-chan domain.PipelineEvent, error)

	// History returns recent Q&A audit records for a workspace.
	History(ctx context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error)

	// ClearHistory removes all audit records for a workspace.
	ClearHistory(ctx context.Context, workspaceID string) (int, error)
}
