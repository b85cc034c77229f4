package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

// TypeNotificationSend is the asynq task type for outbound notifications.
const TypeNotificationSend = "notification:send"

// NotificationPayload is the task payload for a single notification.
type NotificationPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewNotificationTask encodes p as a notification task.
func NewNotificationTask(p NotificationPayload, opts ...asynq.Option) (*asynq.Task, error) {
	pb, err := json.Marshal(p)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal notification payload failed")
	}
	return asynq.NewTask(TypeNotificationSend, pb, opts...), nil
}

// Sender delivers a rendered notification.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationTaskHandler delivers queued notifications.
type NotificationTaskHandler struct {
	sender Sender
}

func NewNotificationTaskHandler(sender Sender) *NotificationTaskHandler {
	return &NotificationTaskHandler{sender: sender}
}

func (h *NotificationTaskHandler) HandleSend(ctx context.Context, t *asynq.Task) error {
	var p NotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid notification task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.To == "" {
		logger.L().Warn("notification without recipient dropped", zap.String("subject", p.Subject))
		return fmt.Errorf("empty recipient: %w", asynq.SkipRetry)
	}

	logger.L().Info("handling notification task", zap.String("to", p.To), zap.String("subject", p.Subject))
	if err := h.sender.Send(ctx, p.To, p.Subject, p.Body); err != nil {
		logger.L().Error("notification delivery failed", zap.String("to", p.To), zap.Error(err))
		return err
	}
	return nil
}
