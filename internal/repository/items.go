package repository

import (
	"context"
	"fmt"

	"agency_crm_backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// itemTable names a line item table and its owner column.
type itemTable struct {
	name  string
	owner string
}

var (
	quoteItems   = itemTable{name: "quote_line_items", owner: "quote_id"}
	invoiceItems = itemTable{name: "invoice_line_items", owner: "invoice_id"}
)

// loadItems returns the line items of every owner in ids, in position order.
func loadItems(ctx context.Context, q querier, t itemTable, ids []uuid.UUID) (map[uuid.UUID][]pricing.LineItem, error) {
	out := make(map[uuid.UUID][]pricing.LineItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT %[2]s, service_ref, description, quantity, unit_price, sort_order
		FROM %[1]s
		WHERE %[2]s = ANY($1)
		ORDER BY %[2]s, position`, t.name, t.owner)

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner uuid.UUID
			item  pricing.LineItem
		)
		if err := rows.Scan(&owner, &item.ServiceRef, &item.Description, &item.Quantity, &item.UnitPrice, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out[owner] = append(out[owner], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return out, nil
}

// replaceItems rewrites the line items of one owner.
func replaceItems(ctx context.Context, q querier, t itemTable, owner uuid.UUID, items []pricing.LineItem) error {
	batch := &pgx.Batch{}
	batch.Queue(fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.name, t.owner), owner)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, position, sort_order, service_ref, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, t.name, t.owner)
	for i, item := range items {
		batch.Queue(insert, owner, i, item.SortOrder, item.ServiceRef, item.Description, item.Quantity, item.UnitPrice)
	}

	results := q.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return mapError("save "+t.name, err)
		}
	}
	return results.Close()
}
