package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"scanreceiver/internal/logging"
	"scanreceiver/internal/metrics"
	"scanreceiver/internal/model"
	"scanreceiver/internal/service"
)

const (
	// ScansPath is the single ingestion route.
	ScansPath = "/api/scans"

	metadataField = "metadata"
	ocrTextField  = "ocrText"

	msgPing     = "Connection successful!"
	msgReceived = "Scan received successfully"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Authentication is applied by middleware before these handlers run.
func RegisterRoutes(app fiber.Router, scanSvc service.ScanService, log *logging.Logger, m *metrics.Metrics) {
	if log == nil {
		log = logging.Discard()
	}

	// Liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Post(ScansPath, ReceiveScan(scanSvc, log.With(map[string]any{"component": "http"}), m))
}

// ReceiveScan handles POST /api/scans.
//
//	@Summary		Ping or submit a scan
//	@Description	A JSON body is a connectivity ping. Anything else is read as a multipart
//	@Description	scan submission: any number of file parts, an optional "metadata" JSON
//	@Description	object and optional "ocrText".
//	@Tags			scans
//	@Accept			json
//	@Accept			mpfd
//	@Produce		json
//	@Param			Authorization	header		string	true	"<scheme> <token>"
//	@Param			metadata		formData	string	false	"JSON object, e.g. {\"title\":\"Receipt\"}"
//	@Param			ocrText			formData	string	false	"Extracted text"
//	@Success		200				{object}	successPayload
//	@Failure		400				{object}	errorPayload
//	@Failure		401				{object}	errorPayload
//	@Failure		403				{object}	errorPayload
//	@Failure		413				{object}	errorPayload
//	@Failure		500				{object}	errorPayload
//	@Router			/api/scans [post]
func ReceiveScan(svc service.ScanService, log *logging.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		reqLog := log.WithContext(ctx)

		if isJSON(c.Get(fiber.HeaderContentType)) {
			var payload map[string]any
			if err := json.Unmarshal(c.Body(), &payload); err != nil {
				return ingestionFailure(c, reqLog, m, err, nil)
			}
			svc.Ping(ctx, payload)
			m.ScanOutcome(metrics.OutcomePing)
			return c.JSON(successPayload{Success: true, Message: msgPing})
		}

		sub, err := decodeSubmission(c, reqLog, m)
		if err != nil {
			return ingestionFailure(c, reqLog, m, err, nil)
		}
		receipt, err := svc.Submit(ctx, sub)
		if err != nil {
			return ingestionFailure(c, reqLog, m, err, receipt)
		}

		m.ScanOutcome(metrics.OutcomeAccepted)
		return c.JSON(successPayload{Success: true, Message: msgReceived})
	}
}

// ingestionFailure answers any parse or persistence error with 400 and its message.
// Artifacts stored before the failure are left in place.
func ingestionFailure(c *fiber.Ctx, log *logging.Logger, m *metrics.Metrics, err error, receipt *model.ScanReceipt) error {
	fields := map[string]any{}
	if receipt != nil {
		fields["kept_files"] = receipt.Names()
	}
	log.Error("scan_ingest_failed", fields, err)
	m.ScanOutcome(metrics.OutcomeFailed)
	return writeError(c, fiber.StatusBadRequest, err.Error())
}

// isJSON reports whether a Content-Type value declares a JSON body
// (application/json or an application/*+json type).
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == fiber.MIMEApplicationJSON ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

// decodeSubmission builds a ScanSubmission from a multipart body. Bodies that are not
// multipart yield an empty submission whose text fields come from a URL-encoded form, if any.
func decodeSubmission(c *fiber.Ctx, log *logging.Logger, m *metrics.Metrics) (*model.ScanSubmission, error) {
	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, fmt.Errorf("decode multipart form: %w", err)
	}

	sub := &model.ScanSubmission{}
	formValue := func(key string) string {
		return string(c.Request().PostArgs().Peek(key))
	}
	if form != nil {
		sub.Files = fileParts(form.File)
		formValue = func(key string) string {
			if vs := form.Value[key]; len(vs) > 0 {
				return vs[0]
			}
			return ""
		}
	}

	md, err := model.ParseMetadata(formValue(metadataField))
	if err != nil {
		log.Warn("metadata_parse_failed", map[string]any{"error": err.Error()})
		m.MetadataInvalid()
		md = model.Metadata{}
	}
	sub.Metadata = md
	sub.OCRText = formValue(ocrTextField)

	return sub, nil
}

// fileParts flattens the decoded files, ordered by field name and then by part order.
func fileParts(files map[string][]*multipart.FileHeader) []model.FilePart {
	fields := make([]string, 0, len(files))
	for f := range files {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []model.FilePart
	for _, field := range fields {
		for _, fh := range files[field] {
			parts = append(parts, model.FilePart{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return parts
}
