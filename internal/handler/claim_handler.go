package handler

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimcheck/internal/archive"
	"claimcheck/internal/config"
	"claimcheck/internal/csvexport"
	"claimcheck/internal/domain"
	"claimcheck/internal/middleware"
	"claimcheck/internal/pipeline"
	"claimcheck/internal/port"
)

// ClaimHandler handles claim processing endpoints. Archiver and audit
// repository are optional; nil disables the corresponding feature.
type ClaimHandler struct {
	pipeline *pipeline.Pipeline
	upload   config.UploadConfig
	archiver *archive.Archiver
	audit    port.DecisionAuditRepository
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(p *pipeline.Pipeline, upload config.UploadConfig, archiver *archive.Archiver, audit port.DecisionAuditRepository) *ClaimHandler {
	return &ClaimHandler{pipeline: p, upload: upload, archiver: archiver, audit: audit}
}

// Process handles POST /api/v1/claims/process. It accepts a multipart form
// with one or more PDF files under the "files" field and runs the full claim
// pipeline synchronously.
func (h *ClaimHandler) Process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		HandleError(c, domain.ErrEmptyClaim)
		return
	}
	if h.upload.MaxFiles > 0 && len(files) > h.upload.MaxFiles {
		HandleError(c, domain.ErrTooManyDocuments)
		return
	}

	maxBytes := h.upload.MaxFileSizeMB * 1024 * 1024
	docs := make([]domain.RawDocument, 0, len(files))
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			HandleError(c, domain.ErrUnsupportedFileType)
			return
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file "+fh.Filename)
			return
		}
		docs = append(docs, domain.RawDocument{Filename: fh.Filename, Bytes: data})
	}

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result, err := h.pipeline.Process(c.Request.Context(), requestID, docs)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.archiveResult(c, &result)
	h.recordDecision(c, &result)

	RespondOK(c, result)
}

// archiveResult uploads the finished result when archiving is configured.
// Failures are logged, never surfaced; the claim outcome stands on its own.
func (h *ClaimHandler) archiveResult(c *gin.Context, result *domain.ClaimResult) {
	if h.archiver == nil {
		return
	}
	if key, err := h.archiver.Store(c.Request.Context(), result); err != nil {
		log.Printf("claimHandler.Process: archiving failed for %s: %v", result.RequestID, err)
	} else {
		log.Printf("claimHandler.Process: archived %s as %s", result.RequestID, key)
	}
}

func (h *ClaimHandler) recordDecision(c *gin.Context, result *domain.ClaimResult) {
	if h.audit == nil {
		return
	}
	entry := &domain.DecisionAuditEntry{
		ID:             uuid.New().String(),
		RequestID:      result.RequestID,
		Status:         string(result.Decision.Status),
		Reason:         result.Decision.Reason,
		ApprovedAmount: result.Decision.ApprovedAmount,
		Confidence:     result.Decision.Confidence,
		DocumentCount:  len(result.Classifications),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.audit.Create(c.Request.Context(), entry); err != nil {
		log.Printf("claimHandler.Process: audit write failed for %s: %v", result.RequestID, err)
	}
}

// GetArchive handles GET /api/v1/claims/:request_id/archive. It returns a
// time-limited download link for the archived claim result.
func (h *ClaimHandler) GetArchive(c *gin.Context) {
	if h.archiver == nil {
		RespondError(c, http.StatusServiceUnavailable, "ARCHIVE_DISABLED", "claim archiving is not configured")
		return
	}
	requestID := c.Param("request_id")
	url, err := h.archiver.DownloadURL(c.Request.Context(), requestID)
	if err != nil {
		log.Printf("claimHandler.GetArchive: presign failed for %s: %v", requestID, err)
		RespondError(c, http.StatusBadGateway, "ARCHIVE_UNAVAILABLE", "could not generate a download link")
		return
	}
	RespondOK(c, gin.H{"request_id": requestID, "url": url})
}

// ExportCSV handles POST /api/v1/claims/export. It takes previously returned
// structured records and streams them back as a CSV attachment.
func (h *ClaimHandler) ExportCSV(c *gin.Context) {
	var req struct {
		Records []domain.StructuredRecord `json:"records"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "body must be JSON with a records array")
		return
	}
	if len(req.Records) == 0 {
		RespondError(c, http.StatusBadRequest, "EMPTY_RECORDS", "records array is empty")
		return
	}

	var buf bytes.Buffer
	if err := csvexport.WriteRecords(&buf, req.Records); err != nil {
		log.Printf("claimHandler.ExportCSV: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not generate CSV")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="claim_records.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ListDecisions handles GET /api/v1/decisions.
func (h *ClaimHandler) ListDecisions(c *gin.Context) {
	if h.audit == nil {
		RespondError(c, http.StatusServiceUnavailable, "AUDIT_DISABLED", "decision audit log is not configured")
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, entries, PagMeta{Total: len(entries), Limit: limit})
}

// GetDecision handles GET /api/v1/decisions/:request_id.
func (h *ClaimHandler) GetDecision(c *gin.Context) {
	if h.audit == nil {
		RespondError(c, http.StatusServiceUnavailable, "AUDIT_DISABLED", "decision audit log is not configured")
		return
	}
	requestID := c.Param("request_id")
	entries, err := h.audit.ListByRequest(c.Request.Context(), requestID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if len(entries) == 0 {
		HandleError(c, domain.ErrNotFound)
		return
	}
	RespondOK(c, entries)
}
