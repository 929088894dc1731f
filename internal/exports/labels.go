package exports

// labels is the printed vocabulary of one locale.
type labels struct {
	quoteTitle    string
	invoiceTitle  string
	receiptTitle  string
	from          string
	billTo        string
	details       string
	issued        string
	validUntil    string
	dueDate       string
	paidOn        string
	paymentMethod string
	status        string
	items         string
	description   string
	quantity      string
	unitPrice     string
	amount        string
	subtotal      string
	discount      string
	tax           string
	total         string
	amountPaid    string
	notes         string
	recurring     string
	thanks        string
	dateLayout    string
	statuses      map[string]string
}

var english = labels{
	quoteTitle:    "QUOTE",
	invoiceTitle:  "INVOICE",
	receiptTitle:  "RECEIPT",
	from:          "FROM",
	billTo:        "BILL TO",
	details:       "DETAILS",
	issued:        "Date",
	validUntil:    "Valid until",
	dueDate:       "Due date",
	paidOn:        "Paid on",
	paymentMethod: "Payment method",
	status:        "Status",
	items:         "ITEMS",
	description:   "Description",
	quantity:      "Qty",
	unitPrice:     "Unit price",
	amount:        "Amount",
	subtotal:      "Subtotal",
	discount:      "Discount",
	tax:           "Tax",
	total:         "TOTAL",
	amountPaid:    "AMOUNT PAID",
	notes:         "NOTES",
	recurring:     "Billed monthly",
	thanks:        "Thank you for your business.",
	dateLayout:    "Jan 2, 2006",
	statuses: map[string]string{
		"draft":     "Draft",
		"sent":      "Sent",
		"accepted":  "Accepted",
		"rejected":  "Rejected",
		"expired":   "Expired",
		"pending":   "Pending",
		"paid":      "Paid",
		"cancelled": "Cancelled",
		"overdue":   "Overdue",
	},
}

var spanish = labels{
	quoteTitle:    "COTIZACIÓN",
	invoiceTitle:  "FACTURA",
	receiptTitle:  "RECIBO",
	from:          "DE",
	billTo:        "FACTURAR A",
	details:       "DETALLES",
	issued:        "Fecha",
	validUntil:    "Válida hasta",
	dueDate:       "Vencimiento",
	paidOn:        "Pagado el",
	paymentMethod: "Método de pago",
	status:        "Estado",
	items:         "CONCEPTOS",
	description:   "Descripción",
	quantity:      "Cant.",
	unitPrice:     "Precio unitario",
	amount:        "Importe",
	subtotal:      "Subtotal",
	discount:      "Descuento",
	tax:           "Impuesto",
	total:         "TOTAL",
	amountPaid:    "MONTO PAGADO",
	notes:         "NOTAS",
	recurring:     "Facturación mensual",
	thanks:        "Gracias por su preferencia.",
	dateLayout:    "02/01/2006",
	statuses: map[string]string{
		"draft":     "Borrador",
		"sent":      "Enviada",
		"accepted":  "Aceptada",
		"rejected":  "Rechazada",
		"expired":   "Vencida",
		"pending":   "Pendiente",
		"paid":      "Pagada",
		"cancelled": "Cancelada",
		"overdue":   "Atrasada",
	},
}

// labelsFor falls back to English for unknown locales.
func labelsFor(locale string) (labels, string) {
	if locale == "es" {
		return spanish, "es"
	}
	return english, "en"
}

func (l labels) statusLabel(status string) string {
	if s, ok := l.statuses[status]; ok {
		return s
	}
	return status
}
