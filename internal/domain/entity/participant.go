package entity

import "time"

// Participant persona habilitada para votar (padrón). Email único sin distinguir mayúsculas.
type Participant struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Field1    string // campos libres importados del CSV
	Field2    string
	Field3    string
	HasVoted  bool // caché de "tiene al menos un voto"; la fuente de verdad es el libro de votos
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName nombre completo para correos y reportes.
func (p *Participant) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
