package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

type recordRow struct {
	ID             string         `db:"id"`
	StudentID      string         `db:"student_id"`
	Hours          float64        `db:"hours"`
	ServiceType    string         `db:"service_type"`
	Description    string         `db:"description"`
	DateCompleted  time.Time      `db:"date_completed"`
	AssignedByID   sql.NullString `db:"assigned_by"`
	OrganizationID sql.NullString `db:"organization_id"`
	CreatedAt      time.Time      `db:"created_at"`
	// AssignedBy carries the resolved teacher or organization name when the
	// query joins it in.
	AssignedBy sql.NullString `db:"assigned_by_name"`
}

func (row recordRow) toAssignedRecord() record.AssignedRecord {
	return record.AssignedRecord{
		Record: record.Record{
			ID:            row.ID,
			StudentID:     row.StudentID,
			Hours:         row.Hours,
			Type:          record.Type(row.ServiceType),
			Description:   row.Description,
			DateCompleted: row.DateCompleted,
			TeacherID:     row.AssignedByID.String,
			OrgID:         row.OrganizationID.String,
			CreatedAt:     row.CreatedAt,
		},
		AssignedBy: row.AssignedBy.String,
	}
}

type recordRepository struct {
	db   *sqlx.DB
	exec core.DBExecutor
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *sqlx.DB) *recordRepository {
	return &recordRepository{db: db, exec: db}
}

// Atomic runs fn against a transaction-bound copy of the repository. The
// transaction is rolled back if fn errors or panics, committed otherwise.
func (repo *recordRepository) Atomic(ctx context.Context, fn func(record.Repository) error) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()

	err = fn(&recordRepository{db: repo.db, exec: tx})
	return err
}

func (repo *recordRepository) FindStudentByName(ctx context.Context, fullName string) (user.User, error) {
	// Select up to two rows so duplicates are detectable without a count.
	var rows []userRow
	err := repo.exec.SelectContext(ctx, &rows, `
		SELECT * FROM users
		WHERE LOWER(full_name) = LOWER($1) AND user_type = 'student'
		LIMIT 2`,
		fullName,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding student by name")
	}
	switch len(rows) {
	case 0:
		return user.User{}, record.ErrStudentNotFound
	case 1:
		return rows[0].toUser(), nil
	default:
		return user.User{}, record.ErrAmbiguousStudent
	}
}

func (repo *recordRepository) GetStudentByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, record.ErrStudentNotFound
	}
	var row userRow
	err := repo.exec.GetContext(ctx, &row,
		`SELECT * FROM users WHERE id = $1 AND user_type = 'student'`, id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, record.ErrStudentNotFound, "finding student by ID")
	}
	return row.toUser(), nil
}

func (repo *recordRepository) CreateRecord(ctx context.Context, rec record.Record) error {
	_, err := repo.exec.ExecContext(ctx, `
		INSERT INTO service_records
			(id, student_id, hours, service_type, description, date_completed, assigned_by, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)`,
		rec.ID, rec.StudentID, rec.Hours, rec.Type.String(), rec.Description,
		rec.DateCompleted, rec.TeacherID, rec.OrgID, rec.CreatedAt,
	)
	return errors.Wrap(err, "inserting service record")
}

func (repo *recordRepository) AddStudentHours(ctx context.Context, studentID string, delta float64) error {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE users SET total_hours = total_hours + $1 WHERE id = $2`, delta, studentID)
	if err != nil {
		return errors.Wrap(err, "incrementing total hours")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return record.ErrStudentNotFound
	}
	return nil
}

func (repo *recordRepository) QueryStudentRecords(ctx context.Context, studentID string) ([]record.AssignedRecord, error) {
	var rows []recordRow
	err := repo.exec.SelectContext(ctx, &rows, `
		SELECT sr.*,
		       CASE
		           WHEN sr.assigned_by IS NOT NULL THEN t.full_name
		           ELSE o.name
		       END AS assigned_by_name
		FROM service_records sr
		LEFT JOIN users t ON t.id = sr.assigned_by
		LEFT JOIN organizations o ON o.id = sr.organization_id
		WHERE sr.student_id = $1
		ORDER BY sr.date_completed DESC, sr.created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying service records")
	}

	recs := make([]record.AssignedRecord, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toAssignedRecord())
	}
	return recs, nil
}

func (repo *recordRepository) SearchStudents(ctx context.Context, query string) ([]user.User, error) {
	var rows []userRow
	err := repo.exec.SelectContext(ctx, &rows, `
		SELECT * FROM users
		WHERE user_type = 'student' AND full_name ILIKE '%' || $1 || '%'
		ORDER BY full_name`,
		query,
	)
	if err != nil {
		return nil, errors.Wrap(err, "searching students")
	}

	students := make([]user.User, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toUser())
	}
	return students, nil
}
