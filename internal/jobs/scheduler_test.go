package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"hotelbooking/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStayCompleter struct {
	mock.Mock
}

func (m *MockStayCompleter) CompleteFinishedStays(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func TestScheduler_Register(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.JobsConfig
		entries int
		wantErr bool
	}{
		{"disabled", config.JobsConfig{CompleteStays: config.CronJobConfig{Enabled: false, Schedule: "0 3 * * *"}}, 0, false},
		{"enabled", config.JobsConfig{CompleteStays: config.CronJobConfig{Enabled: true, Schedule: "0 3 * * *"}}, 1, false},
		{"descriptor", config.JobsConfig{CompleteStays: config.CronJobConfig{Enabled: true, Schedule: "@hourly"}}, 1, false},
		{"bad schedule", config.JobsConfig{CompleteStays: config.CronJobConfig{Enabled: true, Schedule: "every day"}}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(new(MockStayCompleter), zerolog.Nop())
			err := s.Register(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.entries, s.Entries())
		})
	}
}

func TestScheduler_CompleteStays(t *testing.T) {
	completer := new(MockStayCompleter)
	var buf bytes.Buffer
	s := NewScheduler(completer, zerolog.New(&buf))
	asOf := time.Date(2026, time.January, 10, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return asOf }

	completer.On("CompleteFinishedStays", mock.Anything, asOf).Return(3, nil).Once()
	s.CompleteStays(context.Background())
	assert.Contains(t, buf.String(), `"completed":3`)

	buf.Reset()
	completer.On("CompleteFinishedStays", mock.Anything, asOf).Return(1, errors.New("db gone")).Once()
	s.CompleteStays(context.Background())
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "db gone")

	completer.AssertExpectations(t)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(new(MockStayCompleter), zerolog.Nop())
	require.NoError(t, s.Register(config.JobsConfig{CompleteStays: config.CronJobConfig{Enabled: true, Schedule: "0 3 * * *"}}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
