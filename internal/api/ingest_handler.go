package api

import (
	"errors"
	"net/http"

	"contentflow/internal/domain"
	"contentflow/internal/service"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	ingestService service.IngestService
}

func NewIngestHandler(ingestService service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// IngestBatchResponse wraps the per-item results of one invocation.
type IngestBatchResponse struct {
	Message    string              `json:"message"`
	Processed  int                 `json:"processed"`
	Skipped    int                 `json:"skipped"`
	Duplicates int                 `json:"duplicates"`
	Failed     int                 `json:"failed"`
	Results    []domain.ItemResult `json:"results"`
}

// HandleBatch godoc
// @Summary Ingest a batch of object-created notifications
// @Description Processes each notification independently: fetch, resize, store the artifact, persist metadata, bump the user counter. Per-item outcomes are reported in the body; an item failure does not fail the batch.
// @Tags Ingest
// @Accept json
// @Produce json
// @Param batch body domain.EventNotification true "Object-created notification batch"
// @Success 200 {object} IngestBatchResponse "Per-item results"
// @Failure 400 {object} errorEnvelope "Malformed batch payload"
// @Router /events [post]
func (h *IngestHandler) HandleBatch(c *gin.Context) {
	var event domain.EventNotification
	if err := c.ShouldBindJSON(&event); err != nil {
		abortWithEnvelope(c, http.StatusBadRequest, "invalid notification payload: "+err.Error(), "ingest_handler")
		return
	}

	userID := userIDFromContext(c)

	summary, err := h.ingestService.ProcessBatch(c.Request.Context(), event, userID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyBatch) {
			abortWithEnvelope(c, http.StatusBadRequest, err.Error(), "ingest_handler")
			return
		}
		abortWithEnvelope(c, http.StatusInternalServerError, err.Error(), "ingest_handler")
		return
	}

	c.JSON(http.StatusOK, IngestBatchResponse{
		Message:    "processing completed",
		Processed:  summary.Processed,
		Skipped:    summary.Skipped,
		Duplicates: summary.Duplicates,
		Failed:     summary.Failed,
		Results:    summary.Results,
	})
}
