package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpirationAlertJobName is the scheduler name of the quote expiration sweep
const ExpirationAlertJobName = "quote_expiration_alerts"

// ExpirationChecker raises alerts for quotes nearing or past their validity date
type ExpirationChecker interface {
	CheckQuoteExpirationAlerts(ctx context.Context) error
}

// ExpirationAlertJob catches quotes that expire without being touched by a write
type ExpirationAlertJob struct {
	checker ExpirationChecker
	logger  *zap.Logger
	timeout time.Duration
}

func NewExpirationAlertJob(checker ExpirationChecker, logger *zap.Logger, timeout time.Duration) *ExpirationAlertJob {
	return &ExpirationAlertJob{
		checker: checker,
		logger:  logger,
		timeout: timeout,
	}
}

// Run is invoked by the scheduler
func (j *ExpirationAlertJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.checker.CheckQuoteExpirationAlerts(ctx); err != nil {
		j.logger.Error("quote expiration sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	j.logger.Info("quote expiration sweep completed", zap.Duration("duration", time.Since(start)))
}

// RegisterExpirationAlertJob adds the sweep to the scheduler
func RegisterExpirationAlertJob(s *Scheduler, checker ExpirationChecker, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewExpirationAlertJob(checker, logger, timeout)
	return s.AddJob(ExpirationAlertJobName, cronExpr, job.Run)
}
