package diagnostics

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Analysis Repository ===========

type analysisRepoPG struct{ pool *pgxpool.Pool }

func NewAnalysisRepoPG(pool *pgxpool.Pool) AnalysisRepository { return &analysisRepoPG{pool: pool} }

const analysisCols = `id, account_id, laboratory_id, type, results, status, created_at, updated_at`

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	var a Analysis
	var results []byte
	err := row.Scan(&a.ID, &a.AccountID, &a.LaboratoryID, &a.Type, &results,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &a.Results); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *analysisRepoPG) Create(ctx context.Context, a *Analysis) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO analysis (id, account_id, laboratory_id, type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		a.ID, a.AccountID, a.LaboratoryID, a.Type, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *analysisRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	return scanAnalysis(r.pool.QueryRow(ctx, `SELECT `+analysisCols+` FROM analysis WHERE id = $1`, id))
}

func (r *analysisRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Analysis, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+analysisCols+` FROM analysis
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *analysisRepoPG) Update(ctx context.Context, a *Analysis) error {
	results, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE analysis SET status = $2, results = $3, updated_at = NOW() WHERE id = $1`,
		a.ID, a.Status, results)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// =========== Imaging Report Repository ===========

type imagingReportRepoPG struct{ pool *pgxpool.Pool }

func NewImagingReportRepoPG(pool *pgxpool.Pool) ImagingReportRepository {
	return &imagingReportRepoPG{pool: pool}
}

func (r *imagingReportRepoPG) Create(ctx context.Context, rep *ImagingReport) error {
	rep.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO imaging_report (id, account_id, image_path, result)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		rep.ID, rep.AccountID, rep.ImagePath, rep.Result).
		Scan(&rep.CreatedAt)
}

func (r *imagingReportRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ImagingReport, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM imaging_report WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, image_path, result, created_at FROM imaging_report
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ImagingReport
	for rows.Next() {
		var rep ImagingReport
		if err := rows.Scan(&rep.ID, &rep.AccountID, &rep.ImagePath, &rep.Result, &rep.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rep)
	}
	return items, total, rows.Err()
}
