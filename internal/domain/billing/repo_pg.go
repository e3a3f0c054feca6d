package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

const paymentCols = `id, account_id, appointment_id, consultation_id, amount, currency,
	method, status, transaction_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.AccountID, &p.AppointmentID, &p.ConsultationID, &p.Amount,
		&p.Currency, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO payment (id, account_id, appointment_id, consultation_id, amount,
			currency, method, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.AccountID, p.AppointmentID, p.ConsultationID, p.Amount, p.Currency,
		p.Method, p.Status, p.TransactionID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentCols+` FROM payment WHERE id = $1`, id))
}

func (r *paymentRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+paymentCols+` FROM payment
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *paymentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepoPG) Statistics(ctx context.Context) ([]*StatusStatistic, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payment GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []*StatusStatistic
	for rows.Next() {
		var s StatusStatistic
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalAmount); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// NewAccountProbePG reports account existence.
func NewAccountProbePG(pool *pgxpool.Pool) AccountProbe {
	return ProbeFunc(func(ctx context.Context, id uuid.UUID) (bool, error) {
		var found bool
		err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM account WHERE id = $1)`, id).Scan(&found)
		return found, err
	})
}

// NewAppointmentProbePG reports appointment existence.
func NewAppointmentProbePG(pool *pgxpool.Pool) AppointmentProbe {
	return ProbeFunc(func(ctx context.Context, id uuid.UUID) (bool, error) {
		var found bool
		err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM appointment WHERE id = $1)`, id).Scan(&found)
		return found, err
	})
}
