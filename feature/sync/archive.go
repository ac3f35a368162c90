package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shopsync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver persists finished run reports to object storage so runs can be
// audited after the bounded in-memory report is gone. Archiving is best
// effort: a failure is logged and never fails the run that produced the
// report.
type Archiver struct {
	client storage.Client
	bucket string
	log    *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// NewArchiver creates an archiver writing to the given bucket.
func NewArchiver(client storage.Client, bucket string, log *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, log: log}
}

// Archive uploads the report as indented JSON under a date-partitioned key.
func (a *Archiver) Archive(ctx context.Context, report *Report) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("sync: failed to encode report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/run-%s.json",
		report.StartedAt.UTC().Format("2006/01/02"), report.RunID)

	_, err = a.client.PutObject(ctx, a.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("sync: failed to upload report: %w", err)
	}

	a.log.Info("archived run report",
		zap.String("run_id", report.RunID),
		zap.String("key", key),
	)
	return nil
}

// ensureBucket creates the bucket on first use. The check is cached for
// the archiver's lifetime; a failed check is retried on the next report.
func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ensured {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("sync: failed to check report bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("sync: failed to create report bucket: %w", err)
		}
	}
	a.ensured = true
	return nil
}
