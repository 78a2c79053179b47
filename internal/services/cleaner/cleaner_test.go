package services

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCleanerService_CleanOnce(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "2025-07-01.log")
	fresh := filepath.Join(dir, "2025-08-31.log")
	other := filepath.Join(dir, "notes.txt")
	for _, name := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}
	old := time.Now().AddDate(0, 0, -RetentionDays-1)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	svc := NewCleanerService(dir, newNoopLogger())
	svc.CleanOnce()

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale log file should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh log file should survive")
	_, err = os.Stat(other)
	assert.NoError(t, err, "non-log files should survive")
}

func TestUntilNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "before today's run",
			now:  time.Date(2025, 8, 31, 0, 40, 0, 0, time.UTC),
			want: 30 * time.Minute,
		},
		{
			name: "after today's run waits for tomorrow",
			now:  time.Date(2025, 8, 31, 2, 10, 0, 0, time.UTC),
			want: 23 * time.Hour,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextRun(tt.now))
		})
	}
}
