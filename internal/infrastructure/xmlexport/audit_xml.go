// Package xmlexport serializa el registro de auditoría a XML con un digest
// SHA-256 calculado sobre la forma canónica (C14N) del documento.
package xmlexport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/encuestas-api/internal/application/dto"
	"github.com/jhoicas/encuestas-api/internal/application/ports"
)

// Namespace del documento exportado.
const Namespace = "urn:encuestas:audit:1"

var _ ports.AuditXMLExporter = (*AuditExporter)(nil)

// AuditExporter implementa ports.AuditXMLExporter con etree.
type AuditExporter struct{}

// NewAuditExporter construye el exportador.
func NewAuditExporter() *AuditExporter { return &AuditExporter{} }

// ExportAuditXML construye el documento y devuelve sus bytes y el digest hex de su forma canónica.
//
//	<AuditLog xmlns="urn:encuestas:audit:1" generatedAt="..." count="N">
//	  <Entry id="1" action="LOGIN" entityType="ADMIN" entityId="3" adminId="3">
//	    <Description>...</Description><IPAddress>...</IPAddress><CreatedAt>...</CreatedAt>
//	  </Entry>
//	</AuditLog>
func (e *AuditExporter) ExportAuditXML(_ context.Context, generatedAt time.Time, logs []dto.AuditLogResponse) ([]byte, string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("AuditLog")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("generatedAt", generatedAt.UTC().Format(time.RFC3339))
	root.CreateAttr("count", strconv.Itoa(len(logs)))

	for _, l := range logs {
		entry := root.CreateElement("Entry")
		entry.CreateAttr("id", strconv.FormatInt(l.ID, 10))
		entry.CreateAttr("action", l.Action)
		entry.CreateAttr("entityType", l.EntityType)
		if l.EntityID != nil {
			entry.CreateAttr("entityId", strconv.FormatInt(*l.EntityID, 10))
		}
		if l.AdminID != nil {
			entry.CreateAttr("adminId", strconv.FormatInt(*l.AdminID, 10))
		}
		entry.CreateElement("Description").SetText(l.Description)
		entry.CreateElement("IPAddress").SetText(l.IPAddress)
		entry.CreateElement("CreatedAt").SetText(l.CreatedAt.UTC().Format(time.RFC3339))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmlexport: serializar: %w", err)
	}
	digest, err := Digest(out)
	if err != nil {
		return nil, "", err
	}
	return out, digest, nil
}

// Digest SHA-256 (hex) de la forma canónica de data.
func Digest(data []byte) (string, error) {
	canon, err := canonicalize(data)
	if err != nil {
		return "", fmt.Errorf("xmlexport: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
