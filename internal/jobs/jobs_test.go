package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/straye-as/quote-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingChecker struct {
	calls       atomic.Int32
	err         error
	hasDeadline atomic.Bool
}

func (c *countingChecker) CheckQuoteExpirationAlerts(ctx context.Context) error {
	c.calls.Add(1)
	_, ok := ctx.Deadline()
	c.hasDeadline.Store(ok)
	return c.err
}

func TestScheduler_AddRemove(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("b", "@every 1h", func() {}))
	require.NoError(t, s.AddJob("a", "0 0 * * * *", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	assert.Error(t, s.AddJob("a", "@every 1h", func() {}), "duplicate names are rejected")
	assert.Error(t, s.AddJob("c", "not a cron", func() {}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
	assert.Error(t, s.RemoveJob("a"))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)

	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestExpirationAlertJob_Run(t *testing.T) {
	checker := &countingChecker{}
	job := jobs.NewExpirationAlertJob(checker, zap.NewNop(), time.Second)

	job.Run()
	assert.Equal(t, int32(1), checker.calls.Load())
	assert.True(t, checker.hasDeadline.Load())

	checker.err = errors.New("db down")
	assert.NotPanics(t, job.Run)
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestRegisterExpirationAlertJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	require.NoError(t, jobs.RegisterExpirationAlertJob(s, &countingChecker{}, zap.NewNop(), "0 0 * * * *", time.Minute))
	assert.Equal(t, []string{jobs.ExpirationAlertJobName}, s.JobNames())
}
