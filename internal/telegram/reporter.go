package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/xcourier/internal/domain"
)

const reportCaption = "#error_report\nAn exception was raised in runtime\n"

// Reporter forwards failed jobs to the developer chat as an attached
// error report and tells the originating chat that something broke.
type Reporter struct {
	api             *tgbotapi.BotAPI
	developerChatID int64
	logger          *slog.Logger
}

// NewReporter creates a reporter. A zero developer chat ID disables the
// report upload; the user-facing reply is always attempted.
func NewReporter(api *tgbotapi.BotAPI, developerChatID int64, logger *slog.Logger) *Reporter {
	return &Reporter{
		api:             api,
		developerChatID: developerChatID,
		logger:          logger,
	}
}

// ReportFailure uploads the job snapshot to the developer chat and
// replies to the originating message. Chats that refuse delivery are
// skipped.
func (r *Reporter) ReportFailure(ctx context.Context, job *domain.Job, jobErr error) {
	if r.developerChatID != 0 {
		doc := tgbotapi.NewDocument(r.developerChatID, tgbotapi.FileBytes{
			Name:  "error_report.txt",
			Bytes: []byte(buildReport(job, jobErr)),
		})
		doc.Caption = reportCaption

		if _, err := r.api.Send(doc); err != nil {
			r.logger.Error("failed to upload error report", "job_id", job.ID, "error", wrapAPIError(err))
		}
	}

	reply := tgbotapi.NewMessage(job.Message.ChatID, fmt.Sprintf("Error\n%T: %s", jobErr, jobErr))
	reply.ReplyToMessageID = job.Message.MessageID

	if _, err := r.api.Send(reply); err != nil {
		wrapped := wrapAPIError(err)
		if errors.Is(wrapped, domain.ErrChatUnavailable) {
			r.logger.Warn("error reply not delivered", "chat_id", job.Message.ChatID, "error", wrapped)
			return
		}
		r.logger.Error("failed to send error reply", "chat_id", job.Message.ChatID, "error", err)
	}
}

// buildReport renders the job snapshot and the error chain as plain
// text for the report attachment.
func buildReport(job *domain.Job, jobErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "job_id: %s\n", job.ID)
	fmt.Fprintf(&b, "status: %s\n", job.Status)
	fmt.Fprintf(&b, "chat_id: %d\n", job.Message.ChatID)
	fmt.Fprintf(&b, "message_id: %d\n", job.Message.MessageID)
	fmt.Fprintf(&b, "user_id: %d\n", job.Message.UserID)
	fmt.Fprintf(&b, "created_at: %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "text:\n%s\n\n", job.Message.Text)

	fmt.Fprintf(&b, "error: %v\n", jobErr)
	for cause := errors.Unwrap(jobErr); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "caused by: %v\n", cause)
	}
	return b.String()
}
