package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/httputil"
	"github.com/persistorai/auditlens/internal/middleware"
	"github.com/persistorai/auditlens/internal/models"
)

// Export response headers.
const (
	headerRecordCount = "X-Record-Count"
	headerTruncated   = "X-Export-Truncated"
)

// LogHandler serves log search and export.
type LogHandler struct {
	logs   LogRepository
	export ExportRepository
	errorResponder
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logs LogRepository, export ExportRepository, log *logrus.Logger, exposeErrors bool) *LogHandler {
	return &LogHandler{logs: logs, export: export, errorResponder: errorResponder{log: log, exposeErrors: exposeErrors}}
}

// Search handles GET /api/v1/logs.
func (h *LogHandler) Search(c *gin.Context) {
	page, err := h.logs.Search(c.Request.Context(), filterParams(c), c.Query("page"), c.Query("limit"))
	if err != nil {
		h.fail(c, "logs.search", err)
		return
	}

	httputil.RespondOK(c, http.StatusOK, page)
}

// Export handles GET /api/v1/logs/export. The file body is written as-is,
// not wrapped in the success envelope.
func (h *LogHandler) Export(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	res, err := h.export.Export(c.Request.Context(), filterParams(c), c.Query("format"), actor)
	if err != nil {
		h.fail(c, "logs.export", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":       "logs.export",
		"actor_id":     actor.ID,
		"format":       res.Format,
		"record_count": res.RecordCount,
		"truncated":    res.Truncated,
	}).Info("audit")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Header(headerRecordCount, strconv.Itoa(res.RecordCount))
	c.Header(headerTruncated, strconv.FormatBool(res.Truncated))
	c.Data(http.StatusOK, res.Format.ContentType(), res.Body)
}

func filterParams(c *gin.Context) models.LogFilterParams {
	return models.LogFilterParams{
		ActorID:   c.Query("actorId"),
		Action:    c.Query("action"),
		Resource:  c.Query("resource"),
		Status:    c.Query("status"),
		Severity:  c.Query("severity"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Search:    c.Query("search"),
	}
}
