package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/reporting"
	"github.com/jhoicas/encuestas-api/internal/domain/entity"
)

// ReportHandler resultados, línea de tiempo, auditoría y exportaciones.
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func sendFile(c *fiber.Ctx, f *reporting.File) error {
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	if f.Digest != "" {
		c.Set("X-Audit-Digest", "sha256="+f.Digest)
	}
	return c.Send(f.Data)
}

// ── Admin ────────────────────────────────────────────────────────────────────

// Results godoc
// @Summary      Resultados completos
// @Tags         results
// @Security     Bearer
// @Produce      json
// @Param        position_id  query  int  false  "Solo esta posición"
// @Success      200          {object}  dto.ResultsResponse
// @Failure      404          {object}  dto.ErrorResponse
// @Router       /api/voting/results [get]
func (h *ReportHandler) Results(c *fiber.Ctx) error {
	positionID, err := queryID(c, "position_id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Results(c.UserContext(), positionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Timeline godoc
// @Summary      Votos por día (o por hora con bucket=hour)
// @Tags         results
// @Security     Bearer
// @Produce      json
// @Param        bucket  query  string  false  "day | hour"  default(day)
// @Success      200     {object}  dto.TimelineResponse
// @Router       /api/voting/results/timeline [get]
func (h *ReportHandler) Timeline(c *fiber.Ctx) error {
	return h.timeline(c, entity.BucketDay)
}

// ExportCSV godoc
// @Summary      Exportar resultados en CSV
// @Tags         results
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {file}  file
// @Router       /api/voting/results/export-csv [get]
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	f, err := h.uc.ExportCSV(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

// VoteAuditTrail godoc
// @Summary      Rastro de votos
// @Tags         results
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.VoteAuditRowResponse
// @Router       /api/voting/results/audit-log [get]
func (h *ReportHandler) VoteAuditTrail(c *fiber.Ctx) error {
	out, err := h.uc.VoteAuditTrail(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportVoteAudit godoc
// @Summary      Descargar rastro de votos (JSON)
// @Tags         results
// @Security     Bearer
// @Produce      json
// @Success      200  {file}  file
// @Router       /api/voting/results/export-audit [get]
func (h *ReportHandler) ExportVoteAudit(c *fiber.Ctx) error {
	f, err := h.uc.ExportVoteAuditJSON(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

// ExportPDF godoc
// @Summary      Exportar resultados en PDF
// @Tags         results
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  file
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/voting/results/export-pdf [get]
func (h *ReportHandler) ExportPDF(c *fiber.Ctx) error {
	f, err := h.uc.ExportPDF(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

// ExportAuditXML godoc
// @Summary      Exportar registro de auditoría en XML
// @Description  El header X-Audit-Digest lleva el SHA-256 de la forma canónica (C14N).
// @Tags         results
// @Security     Bearer
// @Produce      application/xml
// @Param        entity_type  query  string  false  "Tipo de entidad"
// @Param        action       query  string  false  "Acción"
// @Param        limit        query  int     false  "Máximo de entradas (1..500)"
// @Success      200          {file}  file
// @Router       /api/voting/results/export-audit-xml [get]
func (h *ReportHandler) ExportAuditXML(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "filtros inválidos")
	}
	f, err := h.uc.ExportAuditXML(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

// AuditLogs godoc
// @Summary      Registro de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "Tipo de entidad"
// @Param        action       query  string  false  "Acción"
// @Param        limit        query  int     false  "Máximo de entradas (1..500)"  default(100)
// @Success      200          {array}  dto.AuditLogResponse
// @Router       /api/audit-logs [get]
func (h *ReportHandler) AuditLogs(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "filtros inválidos")
	}
	out, err := h.uc.AuditLogs(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Público ──────────────────────────────────────────────────────────────────

// PublicSummary godoc
// @Summary      Resultados de posiciones activas
// @Tags         public-results
// @Produce      json
// @Success      200  {object}  dto.ResultsResponse
// @Router       /api/results/summary [get]
func (h *ReportHandler) PublicSummary(c *fiber.Ctx) error {
	out, err := h.uc.PublicSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PositionResults godoc
// @Summary      Resultados de una posición
// @Tags         public-results
// @Produce      json
// @Param        id   path  int  true  "ID de la posición"
// @Success      200  {object}  dto.PositionResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/results/position/{id} [get]
func (h *ReportHandler) PositionResults(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.PositionResults(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas generales
// @Tags         public-results
// @Produce      json
// @Success      200  {object}  dto.StatisticsResponse
// @Router       /api/results/statistics [get]
func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.uc.Statistics(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PublicTimeline godoc
// @Summary      Votos por hora
// @Tags         public-results
// @Produce      json
// @Success      200  {object}  dto.TimelineResponse
// @Router       /api/results/timeline [get]
func (h *ReportHandler) PublicTimeline(c *fiber.Ctx) error {
	out, err := h.uc.Timeline(c.UserContext(), entity.BucketHour)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *ReportHandler) timeline(c *fiber.Ctx, def entity.Bucket) error {
	bucket := def
	if raw := strings.ToLower(strings.TrimSpace(c.Query("bucket"))); raw != "" {
		bucket = entity.Bucket(raw)
	}
	out, err := h.uc.Timeline(c.UserContext(), bucket)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
