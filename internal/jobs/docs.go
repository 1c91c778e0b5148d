// Package jobs provides scheduled background tasks for the shipment service.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// QRCodeBackfillJob finds shipments without a QR label and generates one,
// up to BackfillBatchSize per run. Existing labels are never replaced.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(listHandler, generateHandler, m, cfg.QRBackfillSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Runs never overlap. A shipment that fails is logged and retried on the next
// run; one purged between listing and generation is skipped silently.
package jobs
