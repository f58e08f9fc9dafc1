package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/telehealth-core/internal/model"
)

// PrescriptionRepo persists prescriptions and their status transitions.
type PrescriptionRepo struct{ db *sql.DB }

func NewPrescriptionRepo(db *sql.DB) *PrescriptionRepo { return &PrescriptionRepo{db: db} }

// DB exposes the underlying handle so services can open transactions that
// span several repositories.
func (r *PrescriptionRepo) DB() *sql.DB { return r.db }

const prescriptionColumns = "id, doctor, patient, body, status, created_at, updated_at"

// Create inserts p with status pending and populates its ID.
func (r *PrescriptionRepo) Create(ctx context.Context, p *model.Prescription) error {
	p.Status = model.StatusPending
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO prescriptions (doctor, patient, body, status, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		p.Doctor, p.Patient, p.Text, string(p.Status), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a prescription by id.
func (r *PrescriptionRepo) GetByID(ctx context.Context, id uint64) (model.Prescription, error) {
	return getPrescription(ctx, r.db, id)
}

// GetByIDTx is GetByID inside a transaction.
func (r *PrescriptionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Prescription, error) {
	return getPrescription(ctx, tx, id)
}

// ResolveTx moves a pending prescription to the terminal status.  The
// conditional UPDATE lets the store serialize competing writers on the
// row: exactly one caller observes resolved=true.  When resolved is false
// the prescription is either missing or already terminal.
func (r *PrescriptionRepo) ResolveTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PrescriptionStatus, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE prescriptions SET status=?, updated_at=? WHERE id=? AND status=?",
		string(status), at.UTC(), id, string(model.StatusPending))
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByPatient returns all prescriptions of a patient ordered by id.
func (r *PrescriptionRepo) ListByPatient(ctx context.Context, patient string) ([]model.Prescription, error) {
	return r.list(ctx, "patient", patient)
}

// ListByDoctor returns all prescriptions written by a doctor ordered by id.
func (r *PrescriptionRepo) ListByDoctor(ctx context.Context, doctor string) ([]model.Prescription, error) {
	return r.list(ctx, "doctor", doctor)
}

// list is only called with the fixed column names above.
func (r *PrescriptionRepo) list(ctx context.Context, column, value string) ([]model.Prescription, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+prescriptionColumns+" FROM prescriptions WHERE "+column+"=? ORDER BY id ASC", value)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Prescription{}
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanPrescription(s scanner) (model.Prescription, error) {
	var (
		p      model.Prescription
		status string
	)
	if err := s.Scan(&p.ID, &p.Doctor, &p.Patient, &p.Text, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Prescription{}, translate(err)
	}
	p.Status = model.PrescriptionStatus(status)
	return p, nil
}

func getPrescription(ctx context.Context, q querier, id uint64) (model.Prescription, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+prescriptionColumns+" FROM prescriptions WHERE id=? LIMIT 1", id)
	return scanPrescription(row)
}
