package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
)

// File archivo exportado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Digest      string // sha256 hex de la forma canónica (solo XML)
}

// ErrExportUnavailable el generador de ese formato no está configurado.
var ErrExportUnavailable = errors.New("exportación no disponible")

const stampLayout = "20060102_150405"

// ExportCSV resumen general y resultados por posición en CSV.
func (uc *UseCase) ExportCSV(ctx context.Context) (*File, error) {
	res, err := uc.Results(ctx, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	s := res.Summary
	records := [][]string{
		{"Reporte de Encuesta", s.GeneratedAt.Format("2006-01-02 15:04:05")},
		{},
		{"Resumen General"},
		{"Total de Participantes", strconv.FormatInt(s.TotalParticipants, 10)},
		{"Participantes que Votaron", strconv.FormatInt(s.VotedParticipants, 10)},
		{"Tasa de Participación", s.ParticipationRate.StringFixed(2) + "%"},
		{},
	}
	for _, p := range res.Positions {
		records = append(records,
			[]string{"Posición: " + p.PositionName},
			[]string{"Candidato", "Votos", "Porcentaje"},
		)
		for _, c := range p.Candidates {
			records = append(records, []string{c.Name, strconv.FormatInt(c.Votes, 10), c.Percentage.StringFixed(2) + "%"})
		}
		for _, sv := range p.SpecialVotes {
			records = append(records, []string{sv.Label, strconv.FormatInt(sv.Votes, 10), sv.Percentage.StringFixed(2) + "%"})
		}
		records = append(records, []string{})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("reporting: escribir csv: %w", err)
	}
	return &File{
		Name:        "encuesta_resultados_" + s.GeneratedAt.Format(stampLayout) + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

// ExportVoteAuditJSON rastro de votos como JSON descargable.
func (uc *UseCase) ExportVoteAuditJSON(ctx context.Context) (*File, error) {
	rows, err := uc.VoteAuditTrail(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	data, err := json.MarshalIndent(struct {
		GeneratedAt string                     `json:"generated_at"`
		TotalVotes  int                        `json:"total_votes"`
		Votes       []dto.VoteAuditRowResponse `json:"votes"`
	}{now.Format("2006-01-02T15:04:05Z07:00"), len(rows), rows}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("reporting: serializar auditoría: %w", err)
	}
	return &File{
		Name:        "auditoria_votos_" + now.Format(stampLayout) + ".json",
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// ExportPDF resultados en PDF.
func (uc *UseCase) ExportPDF(ctx context.Context) (*File, error) {
	if uc.pdf == nil {
		return nil, ErrExportUnavailable
	}
	res, err := uc.Results(ctx, 0)
	if err != nil {
		return nil, err
	}
	data, err := uc.pdf.GenerateResultsPDF(ctx, "Resultados de la Encuesta", res)
	if err != nil {
		return nil, fmt.Errorf("reporting: generar pdf: %w", err)
	}
	return &File{
		Name:        "encuesta_resultados_" + res.Summary.GeneratedAt.Format(stampLayout) + ".pdf",
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// ExportAuditXML registro de auditoría en XML con digest de su forma canónica.
func (uc *UseCase) ExportAuditXML(ctx context.Context, q dto.AuditLogQuery) (*File, error) {
	if uc.xml == nil {
		return nil, ErrExportUnavailable
	}
	logs, err := uc.AuditLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	doc, digest, err := uc.xml.ExportAuditXML(ctx, now, logs)
	if err != nil {
		return nil, fmt.Errorf("reporting: generar xml: %w", err)
	}
	return &File{
		Name:        "auditoria_" + now.Format(stampLayout) + ".xml",
		ContentType: "application/xml",
		Data:        doc,
		Digest:      digest,
	}, nil
}
