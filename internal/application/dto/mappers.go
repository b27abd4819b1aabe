package dto

import "github.com/jhoicas/encuestas-api/internal/domain/entity"

// NewParticipantResponse mapea un participante a su salida.
func NewParticipantResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Field1:    p.Field1,
		Field2:    p.Field2,
		Field3:    p.Field3,
		HasVoted:  p.HasVoted,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewParticipantUserResponse mapea una cuenta de participante (sin hash ni token).
func NewParticipantUserResponse(u *entity.ParticipantUser) ParticipantUserResponse {
	return ParticipantUserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ParticipantID:  u.ParticipantID,
		IsActive:       u.IsActive,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
	}
}

// NewAdminResponse mapea un administrador.
func NewAdminResponse(a *entity.AdminUser) AdminResponse {
	return AdminResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		LastLogin: a.LastLogin,
	}
}

// NewPositionResponse mapea una posición con su número de candidatos.
func NewPositionResponse(p *entity.Position, candidateCount int64) PositionResponse {
	return PositionResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Order:          p.Order,
		IsActive:       p.IsActive,
		CandidateCount: candidateCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// NewCandidateResponse mapea un candidato; photoURL ya resuelto por el almacén de fotos.
func NewCandidateResponse(c *entity.Candidate, positionName, photoURL string, votes int64) CandidateResponse {
	return CandidateResponse{
		ID:           c.ID,
		PositionID:   c.PositionID,
		PositionName: positionName,
		Name:         c.Name,
		Description:  c.Description,
		Order:        c.Order,
		Photo:        c.Photo,
		PhotoURL:     photoURL,
		VoteCount:    votes,
		CreatedAt:    c.CreatedAt,
	}
}

// NewAuditLogResponse mapea una entrada de auditoría.
func NewAuditLogResponse(l *entity.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          l.ID,
		AdminID:     l.AdminID,
		Action:      l.Action,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Description: l.Description,
		IPAddress:   l.IPAddress,
		CreatedAt:   l.CreatedAt,
	}
}
