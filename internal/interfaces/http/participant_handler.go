package http

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/usecase"
)

// ParticipantHandler administración del padrón (admin) y estadísticas públicas.
type ParticipantHandler struct {
	uc *usecase.ParticipantUseCase
}

// NewParticipantHandler construye el handler.
func NewParticipantHandler(uc *usecase.ParticipantUseCase) *ParticipantHandler {
	return &ParticipantHandler{uc: uc}
}

// List godoc
// @Summary      Listar participantes
// @Tags         participants
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "Email o nombre"
// @Param        page      query  int     false  "Página"            default(1)
// @Param        per_page  query  int     false  "Elementos por página"  default(20)
// @Success      200       {object}  dto.ParticipantListResponse
// @Router       /api/participants [get]
func (h *ParticipantHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "paginación inválida")
	}
	out, err := h.uc.List(c.UserContext(), strings.TrimSpace(c.Query("search")), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear participante
// @Tags         participants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ParticipantRequest  true  "Datos del participante"
// @Success      201   {object}  dto.ParticipantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/participants [post]
func (h *ParticipantHandler) Create(c *fiber.Ctx) error {
	var in dto.ParticipantRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener participante
// @Tags         participants
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del participante"
// @Success      200  {object}  dto.ParticipantResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/participants/{id} [get]
func (h *ParticipantHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar participante
// @Tags         participants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "ID del participante"
// @Param        body  body  dto.UpdateParticipantRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ParticipantResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/participants/{id} [put]
func (h *ParticipantHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateParticipantRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar participante (sus votos se eliminan en cascada)
// @Tags         participants
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del participante"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/participants/{id} [delete]
func (h *ParticipantHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id, GetUserID(c), clientIP(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Participante eliminado"})
}

// BulkUpload godoc
// @Summary      Carga masiva CSV
// @Description  Cabecera email,first_name,last_name[,field1,field2,field3]. UTF-8 o Latin-1.
// @Tags         participants
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo CSV"
// @Success      200   {object}  dto.BulkUploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/participants/bulk-upload [post]
func (h *ParticipantHandler) BulkUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "no se envió el archivo")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return badRequest(c, "INVALID_FILE", "el archivo debe ser CSV")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	out, err := h.uc.BulkUpload(c.UserContext(), data, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SendInvitations godoc
// @Summary      Enviar invitaciones
// @Description  Sin participant_ids se invita a todos los que no han votado.
// @Tags         participants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendInvitationsRequest  false  "IDs de participantes"
// @Success      200   {object}  dto.SendInvitationsResponse
// @Router       /api/participants/send-invitations [post]
func (h *ParticipantHandler) SendInvitations(c *fiber.Ctx) error {
	var in dto.SendInvitationsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.SendInvitations(c.UserContext(), in.ParticipantIDs, GetUserID(c), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas del padrón
// @Tags         participants
// @Produce      json
// @Success      200  {object}  dto.ParticipantStatsResponse
// @Router       /api/participants/stats [get]
func (h *ParticipantHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
