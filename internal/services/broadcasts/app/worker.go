// Package app runs the broadcast delivery worker and its runtime wiring.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/halcyonlabs/inneros/internal/platform/audit"
	"github.com/halcyonlabs/inneros/internal/platform/edge"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/domain"
	"github.com/halcyonlabs/inneros/internal/services/broadcasts/storage"
)

// Deliverer sends one chunk of recipients to the delivery edge function.
type Deliverer interface {
	DeliverBroadcast(ctx context.Context, req edge.DeliveryRequest) (edge.DeliveryResult, error)
}

// Config controls the delivery loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	ChunkSize    int
}

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 10
	defaultMaxAttempts  = 5
)

func (c Config) normalized() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = domain.DeliveryChunkSize
	}
	return c
}

// Worker drains due broadcasts and delivers them in recipient chunks.
type Worker struct {
	service *domain.Service
	deliver Deliverer
	audit   *audit.Emitter
	cfg     Config
	clock   func() time.Time
	logf    func(format string, args ...any)
}

// NewWorker creates a delivery worker.
func NewWorker(service *domain.Service, deliver Deliverer, auditEmitter *audit.Emitter, cfg Config) (*Worker, error) {
	if service == nil {
		return nil, fmt.Errorf("broadcast service is required")
	}
	if deliver == nil {
		return nil, fmt.Errorf("deliverer is required")
	}
	return &Worker{
		service: service,
		deliver: deliver,
		audit:   auditEmitter,
		cfg:     cfg.normalized(),
		clock:   time.Now,
		logf:    log.Printf,
	}, nil
}

// Start runs the delivery loop on a background goroutine. The returned
// cancel stops the loop; done closes once it has exited.
func (w *Worker) Start(ctx context.Context) (context.CancelFunc, chan struct{}) {
	if w == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(loopCtx)
	}()
	return cancel, done
}

// Run polls for due broadcasts until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := w.ProcessDue(ctx); err != nil {
		w.logf("broadcast delivery pass failed: %v", err)
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessDue(ctx); err != nil {
				w.logf("broadcast delivery pass failed: %v", err)
			}
		}
	}
}

// ProcessDue runs one delivery pass over due broadcasts.
func (w *Worker) ProcessDue(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("worker is not configured")
	}

	due, err := w.service.DueBroadcasts(ctx, w.clock(), w.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("list due broadcasts: %w", err)
	}
	for _, broadcast := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.deliverOne(ctx, broadcast); err != nil {
			w.logf("deliver broadcast %s: %v", broadcast.ID, err)
		}
	}
	return nil
}

func (w *Worker) deliverOne(ctx context.Context, broadcast storage.Broadcast) error {
	sending, err := w.service.MarkSending(ctx, broadcast.ID)
	if err != nil {
		return fmt.Errorf("mark sending: %w", err)
	}
	w.emit(ctx, sending, "broadcast.sending", audit.SeverityInfo, fmt.Sprintf("attempt %d", sending.Attempts))

	chunks := domain.ChunkRecipients(sending.Recipients, w.cfg.ChunkSize)
	var deliveryErr error
	var undelivered []string
	for i, chunk := range chunks {
		result, err := w.deliver.DeliverBroadcast(ctx, edge.DeliveryRequest{
			BroadcastID: sending.ID,
			Subject:     sending.Subject,
			Body:        sending.Body,
			Recipients:  chunk,
		})
		if err != nil {
			deliveryErr = fmt.Errorf("deliver chunk %d: %w", i+1, err)
			for _, rest := range chunks[i:] {
				undelivered = append(undelivered, rest...)
			}
			break
		}
		status := storage.DeliveryDelivered
		if result.Failed > 0 && result.Delivered == 0 {
			status = storage.DeliveryFailed
		}
		if err := w.service.RecordDeliveries(ctx, sending.ID, chunk, status); err != nil {
			return fmt.Errorf("record deliveries: %w", err)
		}
	}

	if deliveryErr == nil {
		sent, err := w.service.MarkSent(ctx, sending.ID)
		if err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		w.emit(ctx, sent, "broadcast.sent", audit.SeverityInfo, fmt.Sprintf("%d recipients", len(sent.Recipients)))
		return nil
	}

	if sending.Attempts < w.cfg.MaxAttempts {
		nextAttempt := w.clock().Add(retryDelay(sending.Attempts))
		rescheduled, err := w.service.RescheduleRetry(ctx, sending.ID, nextAttempt)
		if err != nil {
			return fmt.Errorf("reschedule retry after %v: %w", deliveryErr, err)
		}
		w.emit(ctx, rescheduled, "broadcast.retry_scheduled", audit.SeverityWarn,
			fmt.Sprintf("attempt %d failed, next at %s", rescheduled.Attempts, rescheduled.NextAttemptAt.Format(time.RFC3339)))
		return deliveryErr
	}

	if err := w.service.RecordDeliveries(ctx, sending.ID, undelivered, storage.DeliveryFailed); err != nil {
		return fmt.Errorf("record failed deliveries: %w", err)
	}
	closed, err := w.service.MarkExhausted(ctx, sending.ID, deliveryErr.Error())
	if err != nil {
		return fmt.Errorf("close exhausted broadcast: %w", err)
	}
	w.emit(ctx, closed, "broadcast.delivery_exhausted", audit.SeverityError,
		fmt.Sprintf("gave up after %d attempts: %v", closed.Attempts, deliveryErr))
	return deliveryErr
}

func (w *Worker) emit(ctx context.Context, broadcast storage.Broadcast, action string, severity audit.Severity, detail string) {
	if w.audit == nil {
		return
	}
	if err := w.audit.Emit(ctx, audit.Event{
		ActorUserID: broadcast.AuthorUserID,
		TenantID:    broadcast.TenantID,
		Action:      action,
		EntityKind:  "broadcast",
		EntityID:    broadcast.ID,
		Severity:    severity,
		Detail:      detail,
	}); err != nil {
		w.logf("emit audit event %s: %v", action, err)
	}
}

// retryDelay returns the exponential delay before the next attempt. The
// first retry waits about a second; later retries roughly double with
// jitter, capped at a minute.
func retryDelay(attempts int) time.Duration {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = time.Second
	expBackoff.MaxInterval = time.Minute
	delay := expBackoff.NextBackOff()
	for i := 1; i < attempts; i++ {
		delay = expBackoff.NextBackOff()
	}
	return delay
}
