package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/pkg/logger"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Execute(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	job := &countingJob{}
	s.AddJob(job, time.Hour)

	s.Start()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	job := &countingJob{err: errors.New("boom")}
	s.AddJob(job, time.Minute)

	assert.EqualError(t, s.RunOnce(context.Background(), "counting"), "boom")
	assert.Error(t, s.RunOnce(context.Background(), "missing"))
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestDisabledJobIsSkipped(t *testing.T) {
	s := NewScheduler(logger.NewNop(), time.Second)
	s.AddJob(&countingJob{}, 0)

	assert.Error(t, s.RunOnce(context.Background(), "counting"))
}
