// Package sideeffect runs the secondary effects of a committed transition.
// Failures are logged and counted but never returned as errors: callers
// surface them as warnings on an otherwise successful result.
package sideeffect

import (
	"context"
	"fmt"

	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/metrics"
)

// Export renders doc with exporter. A nil exporter is not a failure: it
// means exports are not configured and no warning is produced.
func Export(ctx context.Context, exporter ports.DocumentExporter, doc ports.Document, locale string, log *logger.Logger) (*ports.ExportRef, string) {
	if exporter == nil {
		return nil, ""
	}
	ref, err := exporter.Export(ctx, doc, locale)
	if err != nil {
		metrics.RecordSideEffectFailure("export_" + string(doc.Kind))
		log.WithContext(ctx).SideEffectFailed("export."+string(doc.Kind), err)
		return nil, fmt.Sprintf("%s %s was saved, but its document failed to render", doc.Kind, doc.Number())
	}
	return &ref, ""
}

// Warnings drops empty entries.
func Warnings(candidates ...string) []string {
	var out []string
	for _, w := range candidates {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
