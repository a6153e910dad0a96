package service

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scanreceiver/internal/logging"
	"scanreceiver/internal/metrics"
	"scanreceiver/internal/model"
	"scanreceiver/internal/storage"
)

const tracerName = "scanreceiver/internal/service"

// ScanService defines the ingestion use cases behind POST /api/scans.
type ScanService interface {
	// Ping records a connectivity check. The payload is logged and otherwise ignored.
	Ping(ctx context.Context, payload map[string]any)

	// Submit persists every file of sub in order and logs a summary.
	// Files are not rolled back: on error the returned receipt lists the artifacts
	// that were stored before the failing file, and they stay in storage.
	Submit(ctx context.Context, sub *model.ScanSubmission) (*model.ScanReceipt, error)
}

// Option customizes a scan service.
type Option func(*scanService)

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) Option {
	return func(s *scanService) { s.now = now }
}

type scanService struct {
	store   storage.Storage
	log     *logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewScanService constructs a ScanService. m may be nil.
func NewScanService(store storage.Storage, log *logging.Logger, m *metrics.Metrics, opts ...Option) ScanService {
	if log == nil {
		log = logging.Discard()
	}
	s := &scanService{
		store:   store,
		log:     log.With(map[string]any{"component": "ingest"}),
		metrics: m,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scanService) Ping(ctx context.Context, payload map[string]any) {
	s.log.WithContext(ctx).Info("ping_received", map[string]any{"payload": payload})
}

func (s *scanService) Submit(ctx context.Context, sub *model.ScanSubmission) (*model.ScanReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "scan.submit", trace.WithAttributes(
		attribute.Int("scan.file_count", len(sub.Files)),
	))
	defer span.End()

	log := s.log.WithContext(ctx)
	receipt := &model.ScanReceipt{
		Title:     sub.Metadata.Title(),
		Artifacts: make([]model.Artifact, 0, len(sub.Files)),
	}

	for _, fp := range sub.Files {
		a, err := s.saveArtifact(ctx, fp)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "artifact save failed")
			return receipt, err
		}
		receipt.Artifacts = append(receipt.Artifacts, a)
		log.Info("artifact_saved", map[string]any{
			"name":    a.Name,
			"size_kb": fmt.Sprintf("%.1f", float64(a.Size)/1024),
		})
	}

	fields := map[string]any{
		"title":      receipt.Title,
		"file_count": len(receipt.Artifacts),
		"files":      receipt.Names(),
	}
	if v := sub.Metadata.String("scanId"); v != "" {
		fields["scan_id"] = v
	}
	if v := sub.Metadata.String("pageCount"); v != "" {
		fields["page_count"] = v
	}
	if sub.OCRText != "" {
		fields["ocr_text_length"] = utf8.RuneCountInString(sub.OCRText)
	}
	log.Info("scan_received", fields)

	return receipt, nil
}

func (s *scanService) saveArtifact(ctx context.Context, fp model.FilePart) (model.Artifact, error) {
	rc, err := fp.Open()
	if err != nil {
		return model.Artifact{}, fmt.Errorf("open %s: %w", fp.Filename, err)
	}
	defer rc.Close()

	at := s.now()
	name := model.ArtifactName(at, fp.Filename)
	ct := fp.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	info, err := s.store.Put(ctx, name, rc, storage.PutObjectOptions{
		Size:        fp.Size,
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": url.PathEscape(fp.Filename),
		},
	})
	if err != nil {
		return model.Artifact{}, fmt.Errorf("save %s: %w", name, err)
	}
	s.metrics.ArtifactStored(info.Size)

	return model.Artifact{
		Name:        name,
		Field:       fp.Field,
		Original:    fp.Filename,
		Size:        info.Size,
		ContentType: ct,
		StoredAt:    at,
	}, nil
}
