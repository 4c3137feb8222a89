package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NishantDakua/charaks/internal/models"
)

func newDoctorRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func doctorRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "full_name", "email", "phone_number", "profile_photo", "specialization",
		"qualification", "experience_years", "registration_number", "address", "education",
		"languages", "about", "aadhaar_card_image", "verification_documents", "status",
		"approved_at", "approved_by", "approval_remarks", "rejected_at", "rejected_by",
		"rejection_remarks", "created_at", "updated_at",
	}).AddRow(
		"doc-1", "Dr. Asha Rao", "asha@example.com", "+911234567890", nil, "Cardiology",
		"MBBS, MD", 8, "MH-12345", []byte(`{"city":"Pune"}`), []byte(`[{"degree":"MBBS"}]`),
		[]byte(`["English","Hindi"]`), nil, nil, []byte(`[]`), "pending",
		nil, nil, nil, nil, nil,
		nil, now, now,
	)
}

func TestDoctorRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectQuery("SELECT id, full_name, .+ FROM doctors WHERE status = \\$1 ORDER BY created_at ASC, id ASC LIMIT 20 OFFSET 0").
		WithArgs("pending").
		WillReturnRows(doctorRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM doctors WHERE status = $1")).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	doctors, total, err := repo.ListByStatus(context.Background(), models.DoctorFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Dr. Asha Rao", doctors[0].FullName)
	assert.Equal(t, "Pune", doctors[0].Address.City)
	assert.Equal(t, models.StringList{"English", "Hindi"}, doctors[0].Languages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryListByStatusWithSearch(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectQuery("FROM doctors WHERE status = \\$1 AND \\(LOWER\\(full_name\\) LIKE \\$2").
		WithArgs("pending", "%asha%").
		WillReturnRows(doctorRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM doctors WHERE status = $1 AND (LOWER(full_name) LIKE $2")).
		WithArgs("pending", "%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	doctors, total, err := repo.ListByStatus(context.Background(), models.DoctorFilter{
		Status: models.StatusPending,
		Search: "Asha",
	})
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectQuery("SELECT id, full_name, .+ FROM doctors WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryUpdateTransition(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO doctor_remark_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Now().UTC()
	remark := "credentials verified"
	by := "Admin One"
	doctor := &models.Doctor{
		ID:              "doc-1",
		Status:          models.StatusApproved,
		ApprovedAt:      &now,
		ApprovedBy:      &by,
		ApprovalRemarks: &remark,
		UpdatedAt:       now,
	}
	entry := &models.RemarkHistory{
		DoctorID: "doc-1",
		Action:   models.ActionApprove,
		Remark:   remark,
		ActedBy:  by,
		ActedAt:  now,
	}

	require.NoError(t, repo.UpdateTransition(context.Background(), doctor, entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryUpdateTransitionNotPending(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	doctor := &models.Doctor{ID: "doc-1", Status: models.StatusApproved}
	entry := &models.RemarkHistory{DoctorID: "doc-1", Action: models.ActionApprove}

	err := repo.UpdateTransition(context.Background(), doctor, entry)
	assert.True(t, errors.Is(err, ErrNotPending))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryListHistory(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	rows := sqlmock.NewRows([]string{"id", "doctor_id", "action", "remark", "acted_by", "acted_at"}).
		AddRow("h1", "doc-1", "reject", "incomplete documents", "Admin One", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, doctor_id, action, remark, acted_by, acted_at FROM doctor_remark_history WHERE doctor_id = $1 ORDER BY acted_at ASC, id ASC")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	entries, err := repo.ListHistory(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionReject, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoctorRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newDoctorRepoMock(t)
	defer cleanup()
	repo := NewDoctorRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("pending", 3).
		AddRow("approved", 5).
		AddRow("rejected", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM doctors GROUP BY status")).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Pending)
	assert.Equal(t, 5, counts.Approved)
	assert.Equal(t, 2, counts.Rejected)
	assert.Equal(t, 10, counts.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
