package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := New(nil, 0, zap.NewNop())
	daily := &fakeJob{name: "daily", schedule: "0 8 * * *"}
	manual := &fakeJob{name: "manual", err: errors.New("boom")}

	require.NoError(t, s.Register(daily))
	require.NoError(t, s.Register(manual))
	assert.Equal(t, []string{"daily", "manual"}, s.Jobs())

	require.NoError(t, s.RunByName(context.Background(), "daily"))
	assert.Equal(t, 1, daily.runs)
	assert.EqualError(t, s.RunByName(context.Background(), "manual"), "boom")
	assert.Error(t, s.RunByName(context.Background(), "missing"))
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New(nil, 0, zap.NewNop())
	assert.Error(t, s.Register(&fakeJob{name: "bad", schedule: "not a cron"}))
}
