package entity

import "time"

// Position cargo sometido a votación. Nombre único.
type Position struct {
	ID          int64
	Name        string
	Description string
	Order       int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Candidate pertenece a una Position; el nombre es único dentro de la posición.
type Candidate struct {
	ID          int64
	PositionID  int64
	Name        string
	Description string
	Order       int
	Photo       string // nombre de archivo en el almacén de fotos, vacío si no tiene
	NominatedBy *int64 // ParticipantUser que se postuló, nil si lo creó un admin
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
