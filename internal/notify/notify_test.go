package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/internal/queue/tasks"
	appErr "github.com/iqueue/staffing/pkg/errors"
	"github.com/iqueue/staffing/pkg/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core))
	return logs
}

var (
	poster    = models.User{Name: "Pat", Email: "pat@example.com"}
	requester = models.User{Name: "Riley", Email: "riley@example.com"}
	shift     = models.Shift{
		Location: "Main", Area: "ICU", StartTime: "07:00", EndTime: "19:00",
		Date: models.DateOf(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)),
	}
)

func TestShiftRequested(t *testing.T) {
	msgs := ShiftRequested(shift, poster, requester)
	require.Len(t, msgs, 2)
	assert.Equal(t, "pat@example.com", msgs[0].To)
	assert.Equal(t, "riley@example.com", msgs[1].To)
	assert.Equal(t, "Your 2030-01-02 shift has been picked up!!", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Your posted shift for 2030-01-02 at Main in the ICU area has been picked by: Riley")

	// poster requesting their own shift gets one mail
	assert.Len(t, ShiftRequested(shift, poster, poster), 1)
}

func TestDecisionMessages(t *testing.T) {
	ok := RequestApproved(shift, requester)
	assert.Equal(t, "riley@example.com", ok.To)
	assert.Contains(t, ok.Subject, "approved")

	no := RequestDenied(shift, requester)
	assert.Equal(t, "riley@example.com", no.To)
	assert.Contains(t, no.Body, "open again")
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestQueueNotifier_Enqueues(t *testing.T) {
	observe(t)
	q := new(mockEnqueuer)
	msg := RequestApproved(shift, requester)
	q.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var p tasks.NotificationPayload
		return task.Type() == tasks.TypeNotificationSend &&
			json.Unmarshal(task.Payload(), &p) == nil && p.To == msg.To && p.Subject == msg.Subject
	}), mock.Anything).Return(&asynq.TaskInfo{ID: TaskID(msg)}, nil)

	require.NoError(t, NewQueueNotifier(q).Notify(context.Background(), msg))
	q.AssertExpectations(t)
}

func TestQueueNotifier_DuplicateIsNotAnError(t *testing.T) {
	observe(t)
	q := new(mockEnqueuer)
	q.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict)
	assert.NoError(t, NewQueueNotifier(q).Notify(context.Background(), Message{To: "a@example.com"}))
}

func TestQueueNotifier_EnqueueFailure(t *testing.T) {
	observe(t)
	q := new(mockEnqueuer)
	q.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
	err := NewQueueNotifier(q).Notify(context.Background(), Message{To: "a@example.com"})
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
}

func TestTaskIDStable(t *testing.T) {
	m := Message{To: "a@example.com", Subject: "s", Body: "b", Key: "ev-1"}
	assert.Equal(t, TaskID(m), TaskID(m))
	assert.NotEqual(t, TaskID(m), TaskID(Message{To: "b@example.com", Subject: "s", Body: "b", Key: "ev-1"}))
}

func TestTaskIDDistinctPerTransition(t *testing.T) {
	// same text, e.g. a shift requested again after a denial
	first := ShiftRequested(shift, poster, requester)[0]
	again := ShiftRequested(shift, poster, requester)[0]
	require.Equal(t, first.Body, again.Body)
	first.Key, again.Key = "event-1", "event-2"

	assert.NotEqual(t, TaskID(first), TaskID(again))
}

func TestQueueNotifier_RepeatedTextDistinctTransitions(t *testing.T) {
	observe(t)
	q := new(mockEnqueuer)
	var ids []string
	q.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			opts := args.Get(2).([]asynq.Option)
			for _, o := range opts {
				if o.Type() == asynq.TaskIDOpt {
					ids = append(ids, o.Value().(string))
				}
			}
		}).
		Return(&asynq.TaskInfo{ID: "x"}, nil)

	n := NewQueueNotifier(q)
	msg := RequestApproved(shift, requester)
	msg.Key = "event-1"
	require.NoError(t, n.Notify(context.Background(), msg))
	msg.Key = "event-2"
	require.NoError(t, n.Notify(context.Background(), msg))

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	q.AssertNumberOfCalls(t, "EnqueueContext", 2)
}

type notifierFunc func(ctx context.Context, m Message) error

func (f notifierFunc) Notify(ctx context.Context, m Message) error { return f(ctx, m) }

func TestAsync_LogsFailureAndNeverReturnsIt(t *testing.T) {
	logs := observe(t)
	a := NewAsync(notifierFunc(func(ctx context.Context, m Message) error {
		return errors.New("smtp down")
	}), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Notify(ctx, Message{To: "a@example.com"}))
	cancel()
	a.Wait()

	assert.Equal(t, 1, logs.FilterMessage("notification dispatch failed").Len())
}

func TestAsync_SurvivesCallerCancel(t *testing.T) {
	observe(t)
	got := make(chan error, 1)
	a := NewAsync(notifierFunc(func(ctx context.Context, m Message) error {
		got <- ctx.Err()
		return nil
	}), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Notify(ctx, Message{To: "a@example.com"}))
	a.Wait()
	assert.NoError(t, <-got)
}

func TestMailer_Compose(t *testing.T) {
	m, err := NewMailer(MailerConfig{Host: "localhost", Port: 2525, From: "noreply@example.com"})
	require.NoError(t, err)

	msg, err := m.Compose("riley@example.com", "subject", "body")
	require.NoError(t, err)
	assert.Equal(t, []string{"subject"}, msg.GetGenHeader("Subject"))

	_, err = m.Compose("not an address", "s", "b")
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
