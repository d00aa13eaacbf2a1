package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpost/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepStub struct {
	calls    int
	triggers []string
	err      error
}

func (s *sweepStub) Sweep(_ context.Context, trigger string) (service.SweepResult, error) {
	s.calls++
	s.triggers = append(s.triggers, trigger)
	return service.SweepResult{Tags: 1}, s.err
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler("every now and then", &sweepStub{})
	assert.Error(t, err)
}

func TestNewScheduler_RegistersSweep(t *testing.T) {
	s, err := NewScheduler("@every 1h", &sweepStub{})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunSweep(t *testing.T) {
	stub := &sweepStub{}
	s, err := NewScheduler("*/5 * * * *", stub)
	require.NoError(t, err)

	s.runSweep()
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, []string{service.SweepTriggerSchedule}, stub.triggers)

	stub.err = errors.New("db down")
	assert.NotPanics(t, s.runSweep)
	assert.Equal(t, 2, stub.calls)
}
