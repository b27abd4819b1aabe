// Package pdf genera el reporte de resultados de la encuesta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título  │  Fecha de generación                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Participantes / Votaron / Participación / Votos    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  POR POSICIÓN: Candidato | Votos | %  + votos especiales     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR a resultados públicos + leyenda                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
)

var _ ports.ResultsPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.ResultsPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	publicURL string // resultados públicos, codificado en el QR del pie; vacío = sin QR
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(publicURL string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{publicURL: publicURL}
}

// GenerateResultsPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateResultsPDF(_ context.Context, title string, results *dto.ResultsResponse) ([]byte, error) {
	if results == nil {
		return nil, fmt.Errorf("pdf: resultados vacíos")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, results.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(results.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, p := range results.Positions {
		m.AddRows(positionRows(p)...)
		m.AddRows(line.NewRow(3))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRows()...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha de generación (der).
func headerRow(title string, s dto.SummaryResponse) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de resultados", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(s.GeneratedAt.UTC().Format("02/01/2006 15:04 UTC"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// summaryRow: participación global.
func summaryRow(s dto.SummaryResponse) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Size: 11, Top: 6, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Participantes", strconv.FormatInt(s.TotalParticipants, 10)),
		cell("Votaron", strconv.FormatInt(s.VotedParticipants, 10)),
		cell("Participación", s.ParticipationRate.StringFixed(2)+"%"),
		cell("Votos", strconv.FormatInt(s.TotalVotes, 10)),
	)
}

// positionRows: cabecera de la posición, tabla de candidatos y votos especiales.
func positionRows(p dto.PositionResultResponse) []core.Row {
	rows := []core.Row{
		row.New(8).Add(
			col.New(9).Add(text.New(p.PositionName, props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1,
			})),
			col.New(3).Add(text.New(fmt.Sprintf("Total: %d votos", p.TotalVotes), props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Top: 2,
			})),
		),
		tableHeaderRow(),
	}
	for _, c := range p.Candidates {
		name := c.Name
		if p.Winner != nil && p.Winner.CandidateID == c.CandidateID {
			name += "  (ganador)"
		}
		rows = append(rows, tableRow(name, c.Votes, c.Percentage.StringFixed(2), false))
	}
	for _, s := range p.SpecialVotes {
		rows = append(rows, tableRow(s.Label, s.Votes, s.Percentage.StringFixed(2), true))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de resultados.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Opción", 8, align.Left),
		h("Votos", 2, align.Right),
		h("%", 2, align.Right),
	)
}

func tableRow(label string, votes int64, pct string, special bool) core.Row {
	color := (*props.Color)(nil)
	if special {
		color = colorGray
	}
	return row.New(6).Add(
		col.New(8).Add(text.New(label, props.Text{Size: 8, Top: 1, Left: 1, Color: color})),
		col.New(2).Add(text.New(strconv.FormatInt(votes, 10), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
		col.New(2).Add(text.New(pct+"%", props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
	)
}

// footerRows: QR hacia los resultados públicos + leyenda.
func (g *MarotoPDFGenerator) footerRows() []core.Row {
	legend := text.New(
		"Porcentajes calculados sobre el total de votos de cada posición, redondeados a 2 decimales.",
		props.Text{Size: 6.5, Color: colorGray, Top: 2},
	)
	if g.publicURL == "" {
		return []core.Row{row.New(8).Add(col.New(12).Add(legend))}
	}
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(g.publicURL, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Resultados públicos:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3, Color: colorPrimary}),
				text.New(g.publicURL, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			),
		),
		row.New(8).Add(col.New(12).Add(legend)),
	}
}
