package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nazsats/blood-report-analyzer-sub000/app/config"
	"github.com/nazsats/blood-report-analyzer-sub000/app/models"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// Postgres implements Store on top of lib/pq.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info("connected to Postgres")
	return db, nil
}

func (p *Postgres) EnsureUser(ctx context.Context, uid, email string) (models.User, error) {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, pro, plan, free_uploads_used)
		VALUES ($1, $2, FALSE, $3, 0)
		ON CONFLICT (uid) DO NOTHING;
	`, uid, email, models.PlanFree)
	if err != nil {
		return models.User{}, err
	}
	return p.GetUser(ctx, uid)
}

func (p *Postgres) GetUser(ctx context.Context, uid string) (models.User, error) {
	var (
		user     models.User
		subID    sql.NullString
		subStart sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT uid, email, pro, plan, sub_id, sub_start, free_uploads_used
		FROM users
		WHERE uid = $1;
	`, uid).Scan(&user.Uid, &user.Email, &user.Pro, &user.Plan, &subID, &subStart, &user.FreeUploadsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	user.SubID = subID.String
	if subStart.Valid {
		t := subStart.Time
		user.SubStart = &t
	}
	return user, nil
}

// RecordFreeUpload increments the free-tier counter by exactly 1. The row is
// locked for the duration of the transaction so two racing analyses cannot
// both read the same count.
func (p *Postgres) RecordFreeUpload(ctx context.Context, uid string) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var used int
	err = tx.QueryRowContext(ctx, `
		SELECT free_uploads_used
		FROM users
		WHERE uid = $1
		FOR UPDATE;
	`, uid).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET free_uploads_used = $1
		WHERE uid = $2;
	`, used+1, uid)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ActivateSubscription is a monotonic upgrade; there is no downgrade path here.
func (p *Postgres) ActivateSubscription(ctx context.Context, uid string, plan models.Plan, subID string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users
		SET pro = TRUE, plan = $1, sub_id = $2, sub_start = now()
		WHERE uid = $3;
	`, plan, subID, uid)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateReport(ctx context.Context, report models.Report) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO reports (report_id, user_id, file_name, status, created_at)
		VALUES ($1, $2, $3, $4, now());
	`, report.ReportID, report.UserID, report.FileName, models.StatusProcessing)
	return err
}

func (p *Postgres) FinishReport(ctx context.Context, reportID string, outcome models.Outcome) error {
	var (
		res sql.Result
		err error
	)
	switch o := outcome.(type) {
	case models.Completed:
		o.Analysis.Normalize()
		var payload []byte
		payload, err = json.Marshal(o.Analysis)
		if err != nil {
			return err
		}
		res, err = p.db.ExecContext(ctx, `
			UPDATE reports
			SET status = $1, analysis = $2, share_id = $3
			WHERE report_id = $4 AND status = $5;
		`, models.StatusComplete, payload, o.ShareID, reportID, models.StatusProcessing)
	case models.Failed:
		res, err = p.db.ExecContext(ctx, `
			UPDATE reports
			SET status = $1, error = $2
			WHERE report_id = $3 AND status = $4;
		`, models.StatusError, o.Message, reportID, models.StatusProcessing)
	default:
		return fmt.Errorf("unknown report outcome %T", outcome)
	}
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAlreadyFinished
	}
	return nil
}

func (p *Postgres) GetReport(ctx context.Context, reportID string) (models.Report, error) {
	return p.getReport(ctx, `report_id = $1`, reportID)
}

func (p *Postgres) GetReportByShareID(ctx context.Context, shareID string) (models.Report, error) {
	return p.getReport(ctx, `share_id = $1`, shareID)
}

func (p *Postgres) getReport(ctx context.Context, where, arg string) (models.Report, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT report_id, user_id, file_name, status, created_at, share_id, error, analysis
		FROM reports
		WHERE `+where+`;
	`, arg)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, ErrNotFound
	}
	if err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (p *Postgres) ListReports(ctx context.Context, uid string) ([]models.Report, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT report_id, user_id, file_name, status, created_at, share_id, error, analysis
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		report   models.Report
		shareID  sql.NullString
		errMsg   sql.NullString
		analysis []byte
	)
	if err := row.Scan(
		&report.ReportID,
		&report.UserID,
		&report.FileName,
		&report.Status,
		&report.CreatedAt,
		&shareID,
		&errMsg,
		&analysis,
	); err != nil {
		return models.Report{}, err
	}
	report.ShareID = shareID.String
	report.Error = errMsg.String
	if len(analysis) > 0 {
		var a models.Analysis
		if err := json.Unmarshal(analysis, &a); err != nil {
			return models.Report{}, fmt.Errorf("decode analysis for report %s: %w", report.ReportID, err)
		}
		a.Normalize()
		report.Analysis = &a
	}
	return report, nil
}
