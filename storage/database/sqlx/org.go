package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
)

type orgRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	OrgKey        string         `db:"org_key"`
	ContactPerson string         `db:"contact_person"`
	ContactEmail  sql.NullString `db:"contact_email"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (row orgRow) toOrg() org.Organization {
	return org.Organization{
		ID:            row.ID,
		Name:          row.Name,
		Key:           row.OrgKey,
		ContactPerson: row.ContactPerson,
		ContactEmail:  row.ContactEmail.String,
		CreatedAt:     row.CreatedAt,
	}
}

type orgRepository struct {
	exec core.DBExecutor
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) *orgRepository {
	return &orgRepository{exec: db}
}

func (repo *orgRepository) CreateOrg(ctx context.Context, o org.Organization) (org.Organization, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := repo.exec.ExecContext(ctx, `
		INSERT INTO organizations (id, name, org_key, contact_person, contact_email)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		o.ID, o.Name, o.Key, o.ContactPerson, o.ContactEmail,
	)
	if err != nil {
		return org.Organization{}, errors.Wrap(err, "inserting organization")
	}
	return o, nil
}

func (repo *orgRepository) GetOrgByID(ctx context.Context, id string) (org.Organization, error) {
	if _, err := uuid.Parse(id); err != nil {
		return org.Organization{}, org.ErrNotFound
	}
	var row orgRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM organizations WHERE id = $1`, id)
	if err != nil {
		return org.Organization{}, trapNoRowsErr(err, org.ErrNotFound, "finding organization by ID")
	}
	return row.toOrg(), nil
}

func (repo *orgRepository) GetOrgByKey(ctx context.Context, key string) (org.Organization, error) {
	var row orgRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM organizations WHERE org_key = $1`, key)
	if err != nil {
		return org.Organization{}, trapNoRowsErr(err, org.ErrNotFound, "finding organization by key")
	}
	return row.toOrg(), nil
}
