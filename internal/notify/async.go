package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iqueue/staffing/pkg/logger"
)

// Async dispatches through next on a background goroutine so the caller
// never waits on, or fails because of, delivery.
type Async struct {
	next    Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, timeout: timeout}
}

// Notify always returns nil; failures are logged.
func (a *Async) Notify(ctx context.Context, m Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Notify(sendCtx, m); err != nil {
			logger.L().Warn("notification dispatch failed",
				zap.String("to", m.To),
				zap.String("subject", m.Subject),
				zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every in-flight dispatch has finished.
func (a *Async) Wait() { a.wg.Wait() }
