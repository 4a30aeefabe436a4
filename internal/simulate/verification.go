package simulate

import (
	"context"
	"fmt"

	"github.com/okian/workbook/pkg/logger"
)

// verify fails the run when any session errored or earned unexpected stars.
func verify(stats *Stats) error {
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d sessions failed", stats.Failed, stats.Sessions)
	}
	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d sessions", ErrMismatch, stats.Mismatched, stats.Checked)
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate, sessionsPerSecond float64
	if stats.Checked > 0 {
		passRate = float64(stats.Passed) / float64(stats.Checked) * percentMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.Sessions) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("sessions", stats.Sessions),
		logger.Int("checked", stats.Checked),
		logger.Int("passed", stats.Passed),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.Int("duplicatesDetected", stats.Duplicates),
		logger.Duration("duration", stats.Duration),
		logger.Float64("passRate", passRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond),
	)
}
