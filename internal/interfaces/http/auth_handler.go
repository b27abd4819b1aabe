package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/auth"
	"github.com/jhoicas/encuestas-api/internal/application/dto"
)

// AuthHandler login de administradores y registro/login de participantes.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Login de administrador
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.AdminLoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "email y password son requeridos")
	}
	out, err := h.uc.AdminLogin(c.UserContext(), in, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Register godoc
// @Summary      Crear administrador
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdminRequest  true  "email, password, full_name"
// @Success      201   {object}  dto.AdminResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.CreateAdminRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	actor := GetUserID(c)
	out, err := h.uc.CreateAdmin(c.UserContext(), in, &actor, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Verify godoc
// @Summary      Verificar token de administrador
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AdminResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	out, err := h.uc.VerifyAdmin(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ParticipantRegister godoc
// @Summary      Registro de participante
// @Description  Crea la cuenta y su registro en el padrón. Sin confirmación obligatoria devuelve access_token.
// @Tags         participant-auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ParticipantRegisterRequest  true  "Datos de registro"
// @Success      201   {object}  dto.ParticipantRegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/participant-auth/register [post]
func (h *AuthHandler) ParticipantRegister(c *fiber.Ctx) error {
	var in dto.ParticipantRegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RegisterParticipant(c.UserContext(), in, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ParticipantLogin godoc
// @Summary      Login de participante
// @Tags         participant-auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.ParticipantLoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/participant-auth/login [post]
func (h *AuthHandler) ParticipantLogin(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Email == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "email y password son requeridos")
	}
	out, err := h.uc.ParticipantLogin(c.UserContext(), in, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmEmail godoc
// @Summary      Confirmar email
// @Tags         participant-auth
// @Produce      json
// @Param        token  query  string  true  "Token de confirmación"
// @Success      200    {object}  dto.ParticipantUserResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/participant-auth/verify [get]
func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmEmail(c.UserContext(), c.Query("token"), clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CheckEmail godoc
// @Summary      Disponibilidad de email
// @Tags         participant-auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckEmailRequest  true  "email"
// @Success      200   {object}  dto.CheckEmailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/participant-auth/check-email [post]
func (h *AuthHandler) CheckEmail(c *fiber.Ctx) error {
	var in dto.CheckEmailRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CheckEmail(c.UserContext(), in.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
