package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
)

// CandidateHandler auto-postulación (participante) y consulta pública de candidatos.
type CandidateHandler struct {
	uc *usecase.NominationUseCase
}

// NewCandidateHandler construye el handler.
func NewCandidateHandler(uc *usecase.NominationUseCase) *CandidateHandler {
	return &CandidateHandler{uc: uc}
}

// Register godoc
// @Summary      Postularse como candidato
// @Tags         candidates
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        position_id  formData  int     true   "ID de la posición"
// @Param        public_name  formData  string  true   "Nombre público (3-200)"
// @Param        description  formData  string  true   "Descripción (10-2000)"
// @Param        photo        formData  file    false  "Foto jpg, jpeg, png o gif"
// @Success      201          {object}  dto.CandidateResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Failure      404          {object}  dto.ErrorResponse
// @Failure      409          {object}  dto.ErrorResponse
// @Router       /api/candidates/register [post]
func (h *CandidateHandler) Register(c *fiber.Ctx) error {
	var in dto.NominationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	var photo *usecase.PhotoUpload
	if fh, err := c.FormFile("photo"); err == nil && fh.Filename != "" {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		photo = &usecase.PhotoUpload{Filename: fh.Filename, Size: fh.Size, Content: f}
	}
	out, err := h.uc.Nominate(c.UserContext(), GetUserID(c), in, photo, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MyCandidates godoc
// @Summary      Mis postulaciones
// @Tags         candidates
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CandidateResponse
// @Router       /api/candidates/my-candidates [get]
func (h *CandidateHandler) MyCandidates(c *fiber.Ctx) error {
	out, err := h.uc.MyNominations(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AvailablePositions godoc
// @Summary      Posiciones abiertas a postulación
// @Tags         candidates
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PositionResponse
// @Router       /api/candidates/available-positions [get]
func (h *CandidateHandler) AvailablePositions(c *fiber.Ctx) error {
	out, err := h.uc.AvailablePositions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ByPosition godoc
// @Summary      Candidatos de una posición
// @Tags         candidates
// @Produce      json
// @Param        id   path  int  true  "ID de la posición"
// @Success      200  {array}  dto.CandidateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/candidates/position/{id} [get]
func (h *CandidateHandler) ByPosition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CandidatesByPosition(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Detalle de candidato
// @Tags         candidates
// @Produce      json
// @Param        id   path  int  true  "ID del candidato"
// @Success      200  {object}  dto.CandidateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/candidates/{id} [get]
func (h *CandidateHandler) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CandidateDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
