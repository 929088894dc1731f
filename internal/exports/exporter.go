// Package exports renders quotes, invoices and receipts as PDF and stores
// them in object storage. Exporter implements ports.DocumentExporter.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"agency_crm_backend/internal/ports"
)

const contentTypePDF = "application/pdf"

// Exporter renders a document and uploads it.
type Exporter struct {
	renderer *Renderer
	storage  Storage
	now      func() time.Time
}

// NewExporter creates an Exporter.
func NewExporter(renderer *Renderer, storage Storage) *Exporter {
	return &Exporter{renderer: renderer, storage: storage, now: time.Now}
}

var _ ports.DocumentExporter = (*Exporter)(nil)

// Export implements ports.DocumentExporter.
func (e *Exporter) Export(ctx context.Context, doc ports.Document, locale string) (ports.ExportRef, error) {
	pdf, err := e.renderer.Render(doc, locale)
	if err != nil {
		return ports.ExportRef{}, err
	}

	key := ObjectKey(doc, locale, e.now())
	if err := e.storage.Put(ctx, key, contentTypePDF, bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		return ports.ExportRef{}, err
	}
	url, err := e.storage.PresignGet(ctx, key)
	if err != nil {
		return ports.ExportRef{}, err
	}
	return ports.ExportRef{Key: key, URL: url}, nil
}

// ObjectKey names the stored PDF, e.g.
// "invoices/INV-004/en-20240115T093000Z.pdf". Every export gets a new key so
// earlier links stay valid until they expire.
func ObjectKey(doc ports.Document, locale string, at time.Time) string {
	_, locale = labelsFor(locale)
	return fmt.Sprintf("%ss/%s/%s-%s.pdf", doc.Kind, doc.Number(), locale, at.UTC().Format("20060102T150405Z"))
}
