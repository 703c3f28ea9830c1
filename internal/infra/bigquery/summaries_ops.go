// Package bigquery streams period summaries into a BigQuery table for
// reporting. Export is best-effort; the document store stays the source of
// truth and a failed export never blocks a recompute.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/ovolkov/billflow/internal/domain"
	"github.com/ovolkov/billflow/internal/reconcile"
)

// Ensure Exporter implements the reconciler's export hook.
var _ reconcile.SummaryExporter = (*Exporter)(nil)

// Exporter streams summary rows into one dataset.table.
type Exporter struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewExporter creates a BigQuery-backed summary exporter.
func NewExporter(ctx context.Context, projectID, dataset, table string) (*Exporter, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewExporter: project ID is required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: bigquery client: %w", err)
	}
	return &Exporter{client: client, dataset: dataset, table: table}, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// ExportSummary appends one summary row to the export table.
func (e *Exporter) ExportSummary(ctx context.Context, summary domain.PeriodSummary) error {
	inserter := e.client.Dataset(e.dataset).Table(e.table).Inserter()
	if err := inserter.Put(ctx, []*SummaryRow{NewSummaryRow(summary)}); err != nil {
		return fmt.Errorf("ExportSummary: inserting row %s: %w", summary.ID, err)
	}
	return nil
}
