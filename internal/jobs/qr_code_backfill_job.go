package jobs

import (
	"context"
	"errors"
	"log/slog"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultBackfillSchedule runs the backfill every minute.
	DefaultBackfillSchedule = "0 * * * * *"
	// BackfillBatchSize caps the shipments handled per run.
	BackfillBatchSize = 50
)

type (
	MissingQRCodeLister interface {
		Handle(ctx context.Context, query queries.ListShipmentsWithoutQRCodeQuery) ([]kernel.UUID, error)
	}
	QRCodeGenerator interface {
		Handle(ctx context.Context, cmd commands.GenerateQRCodeCommand) (shipment.ImageRef, error)
	}
	QRCodeCounter interface {
		QRCodeGenerated(trigger string)
	}
)

// QRCodeBackfillJob generates QR labels for shipments that do not have one yet.
type QRCodeBackfillJob struct {
	lister    MissingQRCodeLister
	generator QRCodeGenerator
	counter   QRCodeCounter
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewQRCodeBackfillJob takes a six-field cron expression; an empty one means
// DefaultBackfillSchedule.
func NewQRCodeBackfillJob(
	lister MissingQRCodeLister,
	generator QRCodeGenerator,
	counter QRCodeCounter,
	schedule string,
	logger *slog.Logger,
) *QRCodeBackfillJob {
	if schedule == "" {
		schedule = DefaultBackfillSchedule
	}
	return &QRCodeBackfillJob{
		lister:    lister,
		generator: generator,
		counter:   counter,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "qr_code_backfill_job"),
	}
}

func (j *QRCodeBackfillJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "QR code backfill job started", "schedule", j.schedule)
	return nil
}

func (j *QRCodeBackfillJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "QR code backfill job stopped")
}

// RunOnce processes one batch and returns how many codes were generated.
// A failing shipment is logged and skipped.
func (j *QRCodeBackfillJob) RunOnce(ctx context.Context) int {
	query, err := queries.NewListShipmentsWithoutQRCodeQuery(BackfillBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "QR code backfill query is invalid", "error", err)
		return 0
	}

	ids, err := j.lister.Handle(ctx, query)
	if err != nil {
		j.logger.ErrorContext(ctx, "QR code backfill lookup failed", "error", err)
		return 0
	}

	generated := 0
	for _, id := range ids {
		cmd, err := commands.NewGenerateQRCodeCommand(id, false)
		if err != nil {
			j.logger.ErrorContext(ctx, "QR code backfill command is invalid", "shipment_id", id.String(), "error", err)
			continue
		}

		if _, err = j.generator.Handle(ctx, cmd); err != nil {
			// Purged between listing and generation.
			if errors.Is(err, errs.ErrObjectNotFound) {
				continue
			}
			j.logger.ErrorContext(ctx, "QR code backfill failed", "shipment_id", id.String(), "error", err)
			continue
		}

		generated++
		if j.counter != nil {
			j.counter.QRCodeGenerated("backfill")
		}
	}

	if generated > 0 {
		j.logger.InfoContext(ctx, "QR codes generated", "count", generated)
	}
	return generated
}
