package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	clients "agency_crm_backend/internal/clients/domain"
	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/invoices/domain"
	"agency_crm_backend/internal/invoices/transport"
	"agency_crm_backend/internal/memstore"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/pricing"
	"agency_crm_backend/platform/apperr"
	"agency_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type failingExporter struct{}

func (failingExporter) Export(context.Context, ports.Document, string) (ports.ExportRef, error) {
	return ports.ExportRef{}, errors.New("renderer down")
}

type recordingExporter struct {
	mu    sync.Mutex
	kinds []ports.DocumentKind
}

func (e *recordingExporter) Export(_ context.Context, doc ports.Document, _ string) (ports.ExportRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, doc.Kind)
	return ports.ExportRef{Key: string(doc.Kind) + "/" + doc.Number(), URL: "https://files.test/" + doc.Number()}, nil
}

// casLosingStore makes every status swap lose, as if another request had
// committed between load and write.
type casLosingStore struct {
	*memstore.Store
}

type casLosingRepo struct {
	ports.Repository
}

func (casLosingRepo) CompareAndSwapInvoiceStatus(context.Context, *domain.Invoice, domain.Status) (bool, error) {
	return false, nil
}

func (s casLosingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return fn(ctx, casLosingRepo{Repository: repo})
	})
}

var payday = time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store ports.Store) *Service {
	t.Helper()
	svc := New(store, numbering.NewAllocator(nil), events.NewInMemoryBus(logger.Discard()), logger.Discard())
	svc.SetClock(func() time.Time { return payday })
	return svc
}

// seedInvoice stores a client and a pending INV-001 due on 2024-01-15.
func seedInvoice(t *testing.T, store *memstore.Store, recurring bool) *domain.Invoice {
	t.Helper()
	client := &clients.Client{ID: uuid.New(), Name: "Acme", Email: "billing@acme.test"}
	items := []pricing.LineItem{{Description: "Retainer", Quantity: 1, UnitPrice: decimal.NewFromInt(900)}}
	totals, err := pricing.ComputeTotals(items, pricing.NoDiscount, decimal.Zero)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	issued := time.Date(2023, time.December, 16, 0, 0, 0, 0, time.UTC)
	inv := domain.FromQuote(uuid.New(), "", client.ID, domain.QuoteSource{
		ID:        uuid.New(),
		Currency:  pricing.CurrencyUSD,
		Items:     items,
		Totals:    totals,
		Recurring: recurring,
		Language:  "en",
	}, 30, issued)

	err = store.WithinTx(context.Background(), func(ctx context.Context, repo ports.Repository) error {
		n, err := repo.IncrementAndGet(ctx, string(numbering.SequenceInvoice))
		if err != nil {
			return err
		}
		inv.Number = numbering.Format(numbering.SequenceInvoice, n)
		if err := repo.SaveClient(ctx, client); err != nil {
			return err
		}
		return repo.SaveInvoice(ctx, inv)
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return inv
}

func TestMarkPaidRecurringAdvancesDueDateOneMonth(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, true)

	method := "bank transfer"
	res, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{PaymentMethod: &method})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if res.PaidInvoice.Status != "paid" || res.PaidInvoice.PaymentMethod == nil || *res.PaidInvoice.PaymentMethod != method {
		t.Fatalf("unexpected paid invoice %+v", res.PaidInvoice)
	}
	if res.NextInvoice == nil {
		t.Fatalf("expected next invoice for recurring plan")
	}
	if res.NextInvoice.DueDate != "2024-02-15" {
		t.Fatalf("expected next due 2024-02-15, got %s", res.NextInvoice.DueDate)
	}
	if res.NextInvoice.Number != "INV-002" || res.NextInvoice.Total != res.PaidInvoice.Total {
		t.Fatalf("unexpected next invoice %s total %s", res.NextInvoice.Number, res.NextInvoice.Total)
	}
	if res.NextInvoice.PreviousInvoiceID == nil || *res.NextInvoice.PreviousInvoiceID != inv.ID {
		t.Fatalf("next invoice must link back to its predecessor")
	}
}

func TestMarkPaidOneOffHasNoNextInvoice(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, false)

	res, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if res.NextInvoice != nil {
		t.Fatalf("expected no next invoice, got %s", res.NextInvoice.Number)
	}
}

func TestMarkPaidTwiceFailsInvalidState(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, true)

	if _, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{}); err != nil {
		t.Fatalf("first pay: %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state on second pay, got %v", err)
	}
}

func TestConcurrentMarkPaidCreatesOneRecurringInvoice(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, true)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{})
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var ok, invalid int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindInvalidState):
			invalid++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || invalid != callers-1 {
		t.Fatalf("expected exactly one success, got %d ok / %d invalid", ok, invalid)
	}

	all, total, err := store.ListInvoices(context.Background(), ports.InvoiceFilter{Now: payday})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected original plus one recurring invoice, got %d", total)
	}
}

func TestMarkPaidLosingSwapReportsConcurrentTransition(t *testing.T) {
	store := memstore.New()
	inv := seedInvoice(t, store, true)
	svc := newTestService(t, casLosingStore{Store: store})

	_, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{})
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error")
	}
	details, _ := appErr.Details.(map[string]string)
	if details["reason"] != "concurrent_transition" {
		t.Fatalf("expected concurrent_transition reason, got %v", appErr.Details)
	}

	all, total, _ := store.ListInvoices(context.Background(), ports.InvoiceFilter{Now: payday})
	if total != 1 || all[0].Status != domain.StatusPending {
		t.Fatalf("losing call must not persist anything")
	}
}

func TestMarkPaidReceiptFailureIsWarning(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	svc.SetExporter(failingExporter{})
	inv := seedInvoice(t, store, false)

	res, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{})
	if err != nil {
		t.Fatalf("pay must succeed when the receipt fails: %v", err)
	}
	if len(res.Warnings) != 1 || res.ReceiptURL != "" {
		t.Fatalf("expected a single warning, got %+v", res)
	}
	stored, _ := store.GetInvoice(context.Background(), inv.ID)
	if stored.Status != domain.StatusPaid {
		t.Fatalf("expected stored status paid, got %s", stored.Status)
	}
}

func TestMarkPaidRendersReceipt(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	exporter := &recordingExporter{}
	svc.SetExporter(exporter)
	inv := seedInvoice(t, store, false)

	res, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if res.ReceiptURL == "" || len(exporter.kinds) != 1 || exporter.kinds[0] != ports.DocumentReceipt {
		t.Fatalf("expected a rendered receipt, got %+v / %v", res, exporter.kinds)
	}
}

func TestCancel(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, false)

	res, err := svc.Cancel(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", res.Status)
	}
	if _, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state paying a cancelled invoice, got %v", err)
	}

	paid := seedInvoice(t, store, false)
	if _, err := svc.MarkPaid(context.Background(), paid.ID, transport.MarkPaidRequest{}); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), paid.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state cancelling a paid invoice, got %v", err)
	}
}

func TestOverdueIsDerivedAndStillPayable(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	inv := seedInvoice(t, store, false)

	got, err := svc.GetByID(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "overdue" || got.StoredStatus != "pending" {
		t.Fatalf("expected overdue over pending, got %s/%s", got.Status, got.StoredStatus)
	}

	list, err := svc.List(context.Background(), transport.ListInvoicesRequest{Status: "overdue"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected one overdue invoice, got %d", list.Total)
	}

	if _, err := svc.MarkPaid(context.Background(), inv.ID, transport.MarkPaidRequest{}); err != nil {
		t.Fatalf("overdue invoice must be payable: %v", err)
	}
}

func TestReceiptRequiresPaidInvoice(t *testing.T) {
	store := memstore.New()
	svc := newTestService(t, store)
	svc.SetExporter(&recordingExporter{})
	inv := seedInvoice(t, store, false)

	if _, err := svc.Receipt(context.Background(), inv.ID, ""); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("expected invalid state for pending receipt, got %v", err)
	}
	if _, err := svc.Export(context.Background(), inv.ID, "es"); err != nil {
		t.Fatalf("export: %v", err)
	}
	stored, _ := store.GetInvoice(context.Background(), inv.ID)
	if stored.DocumentURL == nil || *stored.DocumentURL != "https://files.test/"+inv.Number {
		t.Fatalf("expected document url to be recorded, got %v", stored.DocumentURL)
	}
}
