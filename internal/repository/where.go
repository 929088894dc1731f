package repository

import (
	"fmt"
	"strings"

	"agency_crm_backend/internal/ports"
)

// whereBuilder accumulates AND-ed conditions with positional arguments.
// A condition uses %s (or %[1]s when repeated) where its argument goes.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends ORDER BY and the LIMIT/OFFSET placeholders. Call it after
// every add since it extends args.
func (w *whereBuilder) page(p ports.Page, orderBy string) string {
	w.args = append(w.args, p.Limit, p.Offset)
	return fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(w.args)-1, len(w.args))
}
