package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/voting"
)

// VotingHandler papeletas y envío de votos (flujo por email y participante autenticado).
type VotingHandler struct {
	uc *voting.UseCase
}

// NewVotingHandler construye el handler.
func NewVotingHandler(uc *voting.UseCase) *VotingHandler {
	return &VotingHandler{uc: uc}
}

func requestMeta(c *fiber.Ctx) voting.Meta {
	return voting.Meta{IP: clientIP(c), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// LegacyBallot godoc
// @Summary      Papeleta por email + token
// @Tags         voting
// @Produce      json
// @Param        email  query  string  true  "Email del participante"
// @Param        token  query  string  true  "Token de la invitación"
// @Success      200    {object}  dto.BallotResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/voting/public/positions [get]
func (h *VotingHandler) LegacyBallot(c *fiber.Ctx) error {
	out, err := h.uc.LegacyBallot(c.UserContext(), c.Query("email"), c.Query("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LegacySubmit godoc
// @Summary      Enviar votos por email + token
// @Description  Reemplaza todos los votos previos del participante.
// @Tags         voting
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LegacySubmitRequest  true  "email, token y votos por posición"
// @Success      200   {object}  dto.SubmitVotesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/voting/public/submit [post]
func (h *VotingHandler) LegacySubmit(c *fiber.Ctx) error {
	var in dto.LegacySubmitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SubmitLegacy(c.UserContext(), in, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ActiveSurveys godoc
// @Summary      Papeleta del participante autenticado
// @Tags         voting
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BallotResponse
// @Router       /api/voting/active-surveys [get]
func (h *VotingHandler) ActiveSurveys(c *fiber.Ctx) error {
	out, err := h.uc.BallotForUser(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SubmitVotes godoc
// @Summary      Enviar votos
// @Description  Un voto por posición; si alguna posición ya tiene voto se rechaza toda la papeleta.
// @Tags         voting
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitVotesRequest  true  "Votos por posición"
// @Success      201   {object}  dto.SubmitVotesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/voting/submit-votes [post]
func (h *VotingHandler) SubmitVotes(c *fiber.Ctx) error {
	var in dto.SubmitVotesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SubmitForUser(c.UserContext(), GetUserID(c), in.Votes, requestMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// VoteStatus godoc
// @Summary      Estado de votación
// @Tags         voting
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.VoteStatusResponse
// @Router       /api/voting/vote-status [get]
func (h *VotingHandler) VoteStatus(c *fiber.Ctx) error {
	out, err := h.uc.VoteStatus(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UserInfo godoc
// @Summary      Cuenta del participante
// @Tags         voting
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserInfoResponse
// @Router       /api/voting/user-info [get]
func (h *VotingHandler) UserInfo(c *fiber.Ctx) error {
	out, err := h.uc.UserInfo(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MyVotes godoc
// @Summary      Votos propios
// @Tags         voting
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MyVoteResponse
// @Router       /api/voting/my-votes [get]
func (h *VotingHandler) MyVotes(c *fiber.Ctx) error {
	out, err := h.uc.MyVotes(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
