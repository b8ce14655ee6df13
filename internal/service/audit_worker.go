package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/metrics"
	"github.com/persistorai/auditlens/internal/models"
)

// auditWriteTimeout bounds a single self-log append.
const auditWriteTimeout = 10 * time.Second

// AuditEnqueuer accepts events for asynchronous recording.
type AuditEnqueuer interface {
	Enqueue(e *models.ActivityLog)
}

// AuditWorker buffers self-log events and writes them via a single worker
// goroutine. Writes use a background context so they outlive the request
// that produced them.
type AuditWorker struct {
	appender domain.EventAppender
	log      *logrus.Logger
	jobs     chan *models.ActivityLog
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(appender domain.EventAppender, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &AuditWorker{
		appender: appender,
		log:      log,
		jobs:     make(chan *models.ActivityLog, queueSize),
	}
}

// Enqueue adds an event. Non-blocking; drops the event if the queue is full.
func (w *AuditWorker) Enqueue(e *models.ActivityLog) {
	select {
	case w.jobs <- e:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("action", e.Action).Warn("audit queue full, dropping entry")
	}
}

// Run processes events until the context is cancelled, then drains remaining events.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case e := <-w.jobs:
			w.process(e)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case e := <-w.jobs:
			w.process(e)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(e *models.ActivityLog) {
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := w.appender.AppendEvent(ctx, e); err != nil {
		w.log.WithError(err).WithField("action", e.Action).Warn("audit record failed")
	}
}
