package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
)

// SurveyHandler CRUD de posiciones y candidatos (admin).
type SurveyHandler struct {
	uc *usecase.SurveyUseCase
}

// NewSurveyHandler construye el handler.
func NewSurveyHandler(uc *usecase.SurveyUseCase) *SurveyHandler {
	return &SurveyHandler{uc: uc}
}

// ListPositions godoc
// @Summary      Listar posiciones
// @Tags         survey
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Página"  default(1)
// @Param        per_page  query  int  false  "Elementos por página"  default(20)
// @Success      200       {object}  dto.PositionListResponse
// @Router       /api/survey/positions [get]
func (h *SurveyHandler) ListPositions(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "paginación inválida")
	}
	out, err := h.uc.ListPositions(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreatePosition godoc
// @Summary      Crear posición
// @Tags         survey
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PositionRequest  true  "Datos de la posición"
// @Success      201   {object}  dto.PositionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/survey/positions [post]
func (h *SurveyHandler) CreatePosition(c *fiber.Ctx) error {
	var in dto.PositionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreatePosition(c.UserContext(), in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdatePosition godoc
// @Summary      Actualizar posición
// @Tags         survey
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID de la posición"
// @Param        body  body  dto.UpdatePositionRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.PositionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/survey/positions/{id} [put]
func (h *SurveyHandler) UpdatePosition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdatePositionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdatePosition(c.UserContext(), id, in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeletePosition godoc
// @Summary      Eliminar posición (candidatos y votos en cascada)
// @Tags         survey
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la posición"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/survey/positions/{id} [delete]
func (h *SurveyHandler) DeletePosition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.DeletePosition(c.UserContext(), id, GetUserID(c), clientIP(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Posición eliminada"})
}

// ListCandidates godoc
// @Summary      Listar candidatos
// @Tags         survey
// @Security     Bearer
// @Produce      json
// @Param        position_id  query  int  false  "Filtrar por posición"
// @Success      200          {array}  dto.CandidateResponse
// @Router       /api/survey/candidates [get]
func (h *SurveyHandler) ListCandidates(c *fiber.Ctx) error {
	positionID, err := queryID(c, "position_id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListCandidates(c.UserContext(), positionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateCandidate godoc
// @Summary      Crear candidato
// @Tags         survey
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CandidateRequest  true  "Datos del candidato"
// @Success      201   {object}  dto.CandidateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/survey/candidates [post]
func (h *SurveyHandler) CreateCandidate(c *fiber.Ctx) error {
	var in dto.CandidateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateCandidate(c.UserContext(), in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateCandidate godoc
// @Summary      Actualizar candidato
// @Tags         survey
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "ID del candidato"
// @Param        body  body  dto.UpdateCandidateRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.CandidateResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/survey/candidates/{id} [put]
func (h *SurveyHandler) UpdateCandidate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateCandidateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateCandidate(c.UserContext(), id, in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteCandidate godoc
// @Summary      Eliminar candidato
// @Tags         survey
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del candidato"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/survey/candidates/{id} [delete]
func (h *SurveyHandler) DeleteCandidate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.DeleteCandidate(c.UserContext(), id, GetUserID(c), clientIP(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Candidato eliminado"})
}
