package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NishantDakua/charaks/internal/models"
)

// ErrNotPending is returned when a transition update matches no pending row,
// either because the record is gone or because another admin got there first.
var ErrNotPending = errors.New("doctor application is not pending")

const doctorColumns = `id, full_name, email, phone_number, profile_photo, specialization, qualification, experience_years, registration_number, address, education, languages, about, aadhaar_card_image, verification_documents, status, approved_at, approved_by, approval_remarks, rejected_at, rejected_by, rejection_remarks, created_at, updated_at`

// DoctorRepository manages persistence for doctor applications.
type DoctorRepository struct {
	db *sqlx.DB
}

// NewDoctorRepository constructs a DoctorRepository.
func NewDoctorRepository(db *sqlx.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// ListByStatus returns applications in the given lifecycle state along with
// the bucket's total count. Search matches name, registration number,
// specialization and phone case-insensitively. Ordering is stable.
func (r *DoctorRepository) ListByStatus(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	base := "FROM doctors WHERE status = $1"
	args := []interface{}{filter.Status}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(registration_number) LIKE $%d OR LOWER(specialization) LIKE $%d OR LOWER(phone_number) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1)
		args = append(args, search)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d", doctorColumns, base, size, offset)
	var doctors []models.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}

	return doctors, total, nil
}

// FindByID fetches a doctor application by ID.
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*models.Doctor, error) {
	query := fmt.Sprintf("SELECT %s FROM doctors WHERE id = $1", doctorColumns)
	var doctor models.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// UpdateTransition applies an approve/reject state change together with its
// remark history entry in one transaction. The UPDATE is guarded on the row
// still being pending, so concurrent transitions on the same id resolve to a
// single winner and the history append never lands without the status flip.
func (r *DoctorRepository) UpdateTransition(ctx context.Context, doctor *models.Doctor, entry *models.RemarkHistory) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const update = `UPDATE doctors SET
		status = :status,
		approved_at = :approved_at,
		approved_by = :approved_by,
		approval_remarks = :approval_remarks,
		rejected_at = :rejected_at,
		rejected_by = :rejected_by,
		rejection_remarks = :rejection_remarks,
		updated_at = :updated_at
		WHERE id = :id AND status = 'pending'`

	res, err := tx.NamedExecContext(ctx, update, doctor)
	if err != nil {
		return fmt.Errorf("update doctor status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update doctor status: %w", err)
	}
	if affected == 0 {
		return ErrNotPending
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const insert = `INSERT INTO doctor_remark_history (id, doctor_id, action, remark, acted_by, acted_at)
		VALUES (:id, :doctor_id, :action, :remark, :acted_by, :acted_at)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("insert remark history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// ListHistory returns the ordered audit trail for a doctor application.
func (r *DoctorRepository) ListHistory(ctx context.Context, doctorID string) ([]models.RemarkHistory, error) {
	const query = `SELECT id, doctor_id, action, remark, acted_by, acted_at FROM doctor_remark_history WHERE doctor_id = $1 ORDER BY acted_at ASC, id ASC`
	var entries []models.RemarkHistory
	if err := r.db.SelectContext(ctx, &entries, query, doctorID); err != nil {
		return nil, fmt.Errorf("list remark history: %w", err)
	}
	return entries, nil
}

// CountByStatus returns per-state application counts plus the grand total.
func (r *DoctorRepository) CountByStatus(ctx context.Context) (*models.StatusCounts, error) {
	const query = `SELECT status, COUNT(*) AS count FROM doctors GROUP BY status`
	rows := []struct {
		Status models.DoctorStatus `db:"status"`
		Count  int                 `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	counts := &models.StatusCounts{}
	for _, row := range rows {
		switch row.Status {
		case models.StatusPending:
			counts.Pending = row.Count
		case models.StatusApproved:
			counts.Approved = row.Count
		case models.StatusRejected:
			counts.Rejected = row.Count
		}
	}
	counts.Total = counts.Pending + counts.Approved + counts.Rejected
	return counts, nil
}
