package notify

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/queue/tasks"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
	"github.com/iqueue/staffing/pkg/utils"
)

// Enqueuer is the subset of *asynq.Client used by QueueNotifier.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands messages to the worker through asynq.
type QueueNotifier struct {
	client Enqueuer
}

func NewQueueNotifier(client Enqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

// TaskID derives a stable id so re-enqueueing the same message for the same
// transition within the retention window is a no-op.
func TaskID(m Message) string {
	return "notify-" + utils.HexSHA256(m.Key, m.To, m.Subject, m.Body)
}

func (q *QueueNotifier) Notify(ctx context.Context, m Message) error {
	task, err := tasks.NewNotificationTask(tasks.NotificationPayload{To: m.To, Subject: m.Subject, Body: m.Body})
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.TaskID(TaskID(m)),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.L().Debug("notification already queued", zap.String("to", m.To))
		return nil
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue notification failed")
	}
	logger.L().Debug("notification queued", zap.String("task_id", info.ID), zap.String("to", m.To))
	return nil
}
