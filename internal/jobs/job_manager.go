package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	qrCodeBackfillJob *QRCodeBackfillJob
}

// NewJobManager wires the backfill job to its use cases.
func NewJobManager(
	lister MissingQRCodeLister,
	generator QRCodeGenerator,
	counter QRCodeCounter,
	backfillSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		qrCodeBackfillJob: NewQRCodeBackfillJob(lister, generator, counter, backfillSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.qrCodeBackfillJob.Start(); err != nil {
		return fmt.Errorf("failed to start QR code backfill job: %w", err)
	}
	return nil
}

// StopAll waits for running jobs to finish.
func (jm *JobManager) StopAll() {
	jm.qrCodeBackfillJob.Stop()
}
