package service

import (
	"context"
	"time"
)

const ScanJobName = "cfp-deadline-scan"

// ScanJob runs the deadline scanner on a cron schedule.
type ScanJob struct {
	scanner  DeadlineScanner
	schedule string
	now      func() time.Time
}

func NewScanJob(scanner DeadlineScanner, schedule string) *ScanJob {
	return &ScanJob{scanner: scanner, schedule: schedule, now: time.Now}
}

func (j *ScanJob) Name() string     { return ScanJobName }
func (j *ScanJob) Schedule() string { return j.schedule }

func (j *ScanJob) Run(ctx context.Context) error {
	_, err := j.scanner.Scan(ctx, j.now())
	return err
}
