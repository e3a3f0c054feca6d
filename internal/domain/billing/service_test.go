package billing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// =========== Mocks ===========

type mockPaymentRepo struct {
	payments map[uuid.UUID]*Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: map[uuid.UUID]*Payment{}}
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPaymentRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var items []*Payment
	for _, p := range m.payments {
		if p.AccountID == accountID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	p, ok := m.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	return nil
}

func (m *mockPaymentRepo) Statistics(ctx context.Context) ([]*StatusStatistic, error) {
	byStatus := map[string]*StatusStatistic{}
	for _, p := range m.payments {
		s, ok := byStatus[p.Status]
		if !ok {
			s = &StatusStatistic{Status: p.Status}
			byStatus[p.Status] = s
		}
		s.Count++
		s.TotalAmount = s.TotalAmount.Add(p.Amount)
	}
	var stats []*StatusStatistic
	for _, s := range byStatus {
		stats = append(stats, s)
	}
	return stats, nil
}

type setProbe map[uuid.UUID]bool

func (p setProbe) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return p[id], nil
}

type mockNotifier struct {
	kinds []string
}

func (m *mockNotifier) Notify(ctx context.Context, accountID uuid.UUID, kind, message string) {
	m.kinds = append(m.kinds, kind)
}

// =========== Fixtures ===========

type testEnv struct {
	svc      *Service
	payments *mockPaymentRepo
	notifier *mockNotifier

	accountID     uuid.UUID
	appointmentID uuid.UUID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		payments:      newMockPaymentRepo(),
		notifier:      &mockNotifier{},
		accountID:     uuid.New(),
		appointmentID: uuid.New(),
	}
	env.svc = NewService(env.payments,
		setProbe{env.accountID: true},
		setProbe{env.appointmentID: true},
		env.notifier)
	return env
}

func (env *testEnv) paymentRequest() *CreatePaymentRequest {
	return &CreatePaymentRequest{
		AccountID: env.accountID.String(),
		Amount:    decimal.NewFromFloat(75.500),
		Method:    "cnam",
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *httperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *httperr.Error, got %T: %v", err, err)
	}
	return appErr.Status
}

// =========== Tests ===========

func TestCreatePayment(t *testing.T) {
	env := newTestEnv()

	payment, err := env.svc.Create(context.Background(), env.paymentRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != PaymentPending {
		t.Fatalf("expected pending, got %s", payment.Status)
	}
	if payment.Currency != "TND" {
		t.Fatalf("expected TND, got %s", payment.Currency)
	}
	if len(env.notifier.kinds) != 1 || env.notifier.kinds[0] != "payment" {
		t.Fatalf("expected payment notification, got %v", env.notifier.kinds)
	}
}

func TestCreatePayment_WithAppointment(t *testing.T) {
	env := newTestEnv()

	req := env.paymentRequest()
	req.AppointmentID = env.appointmentID.String()
	payment, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.AppointmentID == nil || *payment.AppointmentID != env.appointmentID {
		t.Fatal("expected appointment reference kept")
	}
}

func TestCreatePayment_UnknownAccount(t *testing.T) {
	env := newTestEnv()

	req := env.paymentRequest()
	req.AccountID = uuid.NewString()
	_, err := env.svc.Create(context.Background(), req)
	if statusOf(t, err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCreatePayment_UnknownAppointment(t *testing.T) {
	env := newTestEnv()

	req := env.paymentRequest()
	req.AppointmentID = uuid.NewString()
	_, err := env.svc.Create(context.Background(), req)
	if statusOf(t, err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCreatePayment_Validation(t *testing.T) {
	env := newTestEnv()

	req := env.paymentRequest()
	req.Amount = decimal.Zero
	req.Method = "cheque"
	_, err := env.svc.Create(context.Background(), req)
	var appErr *httperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *httperr.Error, got %T", err)
	}
	if appErr.Fields["amount"] == "" || appErr.Fields["method"] == "" {
		t.Fatalf("expected amount and method errors, got %v", appErr.Fields)
	}
}

func TestCreatePayment_NegativeAmount(t *testing.T) {
	env := newTestEnv()

	req := env.paymentRequest()
	req.Amount = decimal.NewFromInt(-10)
	_, err := env.svc.Create(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	env := newTestEnv()
	payment, _ := env.svc.Create(context.Background(), env.paymentRequest())

	updated, err := env.svc.UpdateStatus(context.Background(), payment.ID, PaymentCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != PaymentCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}

	_, err = env.svc.UpdateStatus(context.Background(), payment.ID, "settled")
	if statusOf(t, err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %v", err)
	}
}

func TestUpdatePaymentStatus_Unknown(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.UpdateStatus(context.Background(), uuid.New(), PaymentFailed)
	if statusOf(t, err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestStatistics_GroupsByStatus(t *testing.T) {
	env := newTestEnv()

	for _, amount := range []float64{10, 20, 30} {
		req := env.paymentRequest()
		req.Amount = decimal.NewFromFloat(amount)
		if _, err := env.svc.Create(context.Background(), req); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	payment, _ := env.svc.Create(context.Background(), env.paymentRequest())
	env.svc.UpdateStatus(context.Background(), payment.ID, PaymentCompleted)

	stats, err := env.svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byStatus := map[string]*StatusStatistic{}
	for _, s := range stats {
		byStatus[s.Status] = s
	}
	if byStatus[PaymentPending].Count != 3 {
		t.Fatalf("expected 3 pending, got %d", byStatus[PaymentPending].Count)
	}
	if !byStatus[PaymentPending].TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected pending total 60, got %s", byStatus[PaymentPending].TotalAmount)
	}
	if byStatus[PaymentCompleted].Count != 1 {
		t.Fatalf("expected 1 completed, got %d", byStatus[PaymentCompleted].Count)
	}
}
