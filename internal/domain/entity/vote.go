package entity

import (
	"strings"
	"time"
)

// VoteType tipo de voto emitido para una posición.
type VoteType string

// Tipos de voto válidos.
const (
	VoteCandidate  VoteType = "candidate"
	VoteNoSe       VoteType = "no_se"
	VoteNinguno    VoteType = "ninguno"
	VoteAbstencion VoteType = "abstencion"
	VoteBlanco     VoteType = "blanco"
)

// VoteTypes todos los tipos en el orden en que se reportan.
var VoteTypes = []VoteType{VoteCandidate, VoteNoSe, VoteNinguno, VoteAbstencion, VoteBlanco}

// SpecialVoteTypes tipos que no apuntan a un candidato.
var SpecialVoteTypes = []VoteType{VoteNoSe, VoteNinguno, VoteAbstencion, VoteBlanco}

// ParseVoteType normaliza a minúsculas y valida.
func ParseVoteType(s string) (VoteType, bool) {
	t := VoteType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid indica si el tipo es uno de los cinco admitidos.
func (t VoteType) Valid() bool {
	switch t {
	case VoteCandidate, VoteNoSe, VoteNinguno, VoteAbstencion, VoteBlanco:
		return true
	}
	return false
}

// Label etiqueta en español usada en exportaciones.
func (t VoteType) Label() string {
	switch t {
	case VoteCandidate:
		return "Candidato"
	case VoteNoSe:
		return "No Sé"
	case VoteNinguno:
		return "Ninguno"
	case VoteAbstencion:
		return "Abstención"
	case VoteBlanco:
		return "Voto en Blanco"
	}
	return string(t)
}

// Vote registro del libro de votos. CandidateID solo cuando VoteType == candidate.
type Vote struct {
	ID            int64
	ParticipantID int64
	PositionID    int64
	CandidateID   *int64
	VoteType      VoteType
	IPAddress     string
	UserAgent     string
	CreatedAt     time.Time
}
