package xmlexport_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/infrastructure/xmlexport"
)

func sampleLogs() []dto.AuditLogResponse {
	admin := int64(3)
	entity := int64(7)
	at := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	return []dto.AuditLogResponse{
		{ID: 2, AdminID: &admin, Action: "CREATE", EntityType: "POSITION", EntityID: &entity, Description: "Posición creada: Tesorero & Fiscal", IPAddress: "10.0.0.1", CreatedAt: at},
		{ID: 1, Action: "VOTE_SUBMITTED", EntityType: "PARTICIPANT", Description: "Votos registrados en 2 posiciones", IPAddress: "10.0.0.9", CreatedAt: at.Add(-time.Hour)},
	}
}

func TestExportAuditXML_Structure(t *testing.T) {
	gen := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	out, digest, err := xmlexport.NewAuditExporter().ExportAuditXML(context.Background(), gen, sampleLogs())
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "AuditLog", root.Tag)
	assert.Equal(t, "2", root.SelectAttrValue("count", ""))
	assert.Equal(t, "2026-03-02T08:00:00Z", root.SelectAttrValue("generatedAt", ""))

	entries := root.SelectElements("Entry")
	require.Len(t, entries, 2)
	assert.Equal(t, "7", entries[0].SelectAttrValue("entityId", ""))
	assert.Equal(t, "3", entries[0].SelectAttrValue("adminId", ""))
	assert.Equal(t, "Posición creada: Tesorero & Fiscal", entries[0].SelectElement("Description").Text())
	assert.Nil(t, entries[1].SelectAttr("adminId"))
	assert.True(t, strings.Contains(string(out), "&amp;"))
}

func TestExportAuditXML_DigestIsStable(t *testing.T) {
	gen := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	exp := xmlexport.NewAuditExporter()
	_, d1, err := exp.ExportAuditXML(context.Background(), gen, sampleLogs())
	require.NoError(t, err)
	_, d2, err := exp.ExportAuditXML(context.Background(), gen, sampleLogs())
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	logs := sampleLogs()
	logs[1].Description = "Votos registrados en 3 posiciones"
	_, d3, err := exp.ExportAuditXML(context.Background(), gen, logs)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestDigest_IgnoresAttributeOrder(t *testing.T) {
	a, err := xmlexport.Digest([]byte(`<a x="1" y="2"><b/></a>`))
	require.NoError(t, err)
	b, err := xmlexport.Digest([]byte(`<a y="2" x="1"><b></b></a>`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExportAuditXML_Empty(t *testing.T) {
	out, digest, err := xmlexport.NewAuditExporter().ExportAuditXML(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.Contains(t, string(out), `count="0"`)
}
