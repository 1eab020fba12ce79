package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash []byte         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	UserType     string         `db:"user_type"`
	StudentID    sql.NullString `db:"student_id"`
	Grade        sql.NullInt64  `db:"grade"`
	TotalHours   float64        `db:"total_hours"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FullName:     row.FullName,
		Role:         user.Role(row.UserType),
		StudentID:    row.StudentID.String,
		Grade:        int(row.Grade.Int64),
		TotalHours:   row.TotalHours,
		CreatedAt:    row.CreatedAt,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{exec: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	_, err := repo.exec.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, user_type, student_id, grade)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0))`,
		usr.ID, usr.Email, usr.PasswordHash, usr.FullName, usr.Role.String(), usr.StudentID, usr.Grade,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string, role user.Role) (user.User, error) {
	var row userRow
	err := repo.exec.GetContext(ctx, &row,
		`SELECT * FROM users WHERE email = $1 AND user_type = $2`, email, role.String())
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by email")
	}
	return row.toUser(), nil
}
