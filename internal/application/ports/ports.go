package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
)

// Mail mensaje saliente. HTMLBody es opcional.
type Mail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer puerto de salida para correo (SMTP o registro en log).
// Los fallos se registran y no se propagan al caso de uso que originó el envío.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// PhotoStore almacenamiento de fotos de candidatos.
type PhotoStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Remove(ctx context.Context, name string) error
	// URL ruta pública de la foto ("" si name está vacío).
	URL(name string) string
}

// ResultsPDFGenerator genera el reporte de resultados en PDF.
type ResultsPDFGenerator interface {
	GenerateResultsPDF(ctx context.Context, title string, results *dto.ResultsResponse) ([]byte, error)
}

// AuditXMLExporter serializa el registro de auditoría a XML y devuelve el digest
// SHA-256 (hex) de su forma canónica.
type AuditXMLExporter interface {
	ExportAuditXML(ctx context.Context, generatedAt time.Time, logs []dto.AuditLogResponse) (doc []byte, digest string, err error)
}
