package exports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agency_crm_backend/internal/ports"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorPrimary    = &props.Color{Red: 17, Green: 24, Blue: 39}    // near-black
	colorSecondary  = &props.Color{Red: 107, Green: 114, Blue: 128} // gray-500
	colorAccent     = &props.Color{Red: 37, Green: 99, Blue: 235}   // blue-600
	colorTableHead  = &props.Color{Red: 241, Green: 245, Blue: 249} // slate-100
	colorTableAlt   = &props.Color{Red: 249, Green: 250, Blue: 251} // gray-50
	colorGreenLight = &props.Color{Red: 220, Green: 252, Blue: 231} // green-100
	colorGreen      = &props.Color{Red: 22, Green: 163, Blue: 74}   // green-600
	colorRed        = &props.Color{Red: 220, Green: 38, Blue: 38}   // red-600
	colorBorder     = &props.Color{Red: 226, Green: 232, Blue: 240} // slate-200
)

// Renderer draws quotes, invoices and receipts as PDF.
type Renderer struct {
	agencyName  string
	agencyEmail string
	now         func() time.Time
}

// NewRenderer creates a Renderer printing agencyName in the header and footer.
func NewRenderer(agencyName, agencyEmail string) *Renderer {
	return &Renderer{agencyName: agencyName, agencyEmail: agencyEmail, now: time.Now}
}

// Render produces the PDF bytes of doc in locale ("en" or "es").
func (r *Renderer) Render(doc ports.Document, locale string) ([]byte, error) {
	v, err := newDocumentView(doc, locale, r.now())
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(r.buildFooter()); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(r.buildHeader(v)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(r.buildPartiesBlock(v)...)
	m.AddRows(row.New(6))

	if banner := buildStatusBanner(v); banner != nil {
		m.AddRows(banner, row.New(4))
	}

	m.AddRows(buildItemsTable(v)...)
	m.AddRows(row.New(4))
	m.AddRows(buildTotalsBlock(v)...)

	if v.notes != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildNotesBlock(v)...)
	}
	if v.isReceipt {
		m.AddRows(row.New(8), row.New(6).Add(
			col.New(12).Add(text.New(v.lbl.thanks, props.Text{Size: 9, Color: colorSecondary, Align: align.Center})),
		))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

func (r *Renderer) buildHeader(v documentView) []core.Row {
	titleCol := col.New(8).Add(
		text.New(v.title, props.Text{
			Size:  24,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: colorAccent,
		}),
		text.New(v.number, props.Text{
			Size:  11,
			Align: align.Right,
			Color: colorSecondary,
			Top:   12,
		}),
	)
	nameCol := col.New(4).Add(
		text.New(r.agencyName, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Color: colorPrimary,
			Top:   4,
		}),
	)
	return []core.Row{row.New(20).Add(nameCol, titleCol)}
}

func (r *Renderer) buildPartiesBlock(v documentView) []core.Row {
	heading := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	rows := []core.Row{row.New(5).Add(
		col.New(4).Add(text.New(v.lbl.from, heading)),
		col.New(4).Add(text.New(v.lbl.billTo, heading)),
		col.New(4).Add(text.New(v.lbl.details, props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right})),
	)}

	from := compact(r.agencyName, r.agencyEmail)
	lines := max(len(from), len(v.billTo), len(v.details))
	for i := range lines {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(at(from, i), lineStyle(i))),
			col.New(4).Add(text.New(at(v.billTo, i), lineStyle(i))),
			col.New(4).Add(text.New(detailAt(v.details, i), props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
		))
	}
	if v.isRecurring {
		rows = append(rows, row.New(5).Add(
			col.New(12).Add(text.New(v.lbl.recurring, props.Text{Size: 8, Style: fontstyle.Italic, Color: colorSecondary, Align: align.Right})),
		))
	}
	return rows
}

func buildStatusBanner(v documentView) core.Row {
	var fg, bg *props.Color
	switch v.statusKey {
	case "accepted", "paid":
		fg, bg = colorGreen, colorGreenLight
	case "rejected", "cancelled", "expired", "overdue":
		fg, bg = colorRed, &props.Color{Red: 254, Green: 226, Blue: 226}
	default:
		return nil
	}
	return row.New(8).Add(
		col.New(12).Add(text.New(strings.ToUpper(v.status), props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Color: fg,
			Top:   2,
		})),
	).WithStyle(&props.Cell{BackgroundColor: bg})
}

func buildItemsTable(v documentView) []core.Row {
	rows := []core.Row{row.New(7).Add(
		col.New(12).Add(text.New(v.lbl.items, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Color: colorAccent,
		})),
	)}

	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows = append(rows, row.New(7).Add(
		col.New(6).Add(text.New(v.lbl.description, headerStyle)),
		col.New(1).Add(text.New(v.lbl.quantity, headerStyleRight)),
		col.New(2).Add(text.New(v.lbl.unitPrice, headerStyleRight)),
		col.New(3).Add(text.New(v.lbl.amount, headerStyleRight)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Bottom,
		BorderColor:     colorBorder,
	}))

	normalStyle := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}
	for i, item := range v.items {
		r := row.New(7).Add(
			col.New(6).Add(text.New(item.Description, normalStyle)),
			col.New(1).Add(text.New(strconv.Itoa(item.Quantity), rightStyle)),
			col.New(2).Add(text.New(v.format(item.UnitPrice), rightStyle)),
			col.New(3).Add(text.New(v.format(item.Total()), rightStyle)),
		)
		if i%2 == 0 {
			r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}
	return rows
}

func buildTotalsBlock(v documentView) []core.Row {
	rows := []core.Row{
		row.New(1).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
		row.New(3),
	}

	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	rows = append(rows, row.New(6).Add(
		col.New(9).Add(text.New(v.lbl.subtotal, labelStyle)),
		col.New(3).Add(text.New(v.format(v.totals.Subtotal), valueStyle)),
	))
	if v.totals.DiscountAmount.IsPositive() {
		rows = append(rows, row.New(6).Add(
			col.New(9).Add(text.New(v.lbl.discount, labelStyle)),
			col.New(3).Add(text.New("-"+v.format(v.totals.DiscountAmount), props.Text{Size: 9, Color: colorGreen, Align: align.Right})),
		))
	}
	if v.totals.Tax.IsPositive() {
		rows = append(rows, row.New(6).Add(
			col.New(9).Add(text.New(v.lbl.tax, labelStyle)),
			col.New(3).Add(text.New(v.format(v.totals.Tax), valueStyle)),
		))
	}

	totalLabel := v.lbl.total
	if v.isReceipt {
		totalLabel = v.lbl.amountPaid
	}
	totalStyle := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	rows = append(rows, row.New(2), row.New(10).Add(
		col.New(9).Add(text.New(totalLabel, totalStyle)),
		col.New(3).Add(text.New(v.format(v.totals.Total), totalStyle)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Top | border.Bottom,
		BorderColor:     colorBorder,
	}))
	return rows
}

func buildNotesBlock(v documentView) []core.Row {
	return []core.Row{
		row.New(5).Add(
			col.New(12).Add(text.New(v.lbl.notes, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
		row.New(12).Add(
			col.New(12).Add(text.New(v.notes, props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   1,
			})),
		),
	}
}

func (r *Renderer) buildFooter() core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(strings.Join(compact(r.agencyName, r.agencyEmail), "  ·  "), props.Text{
				Size:  6.5,
				Color: colorSecondary,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

func lineStyle(i int) props.Text {
	if i == 0 {
		return props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary}
	}
	return props.Text{Size: 8, Color: colorSecondary}
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func detailAt(fields []field, i int) string {
	if i < len(fields) {
		return fields[i].label + ": " + fields[i].value
	}
	return ""
}
