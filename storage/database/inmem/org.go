package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/lchelle/servicediary/core/org"
)

type OrgRepository struct {
	db *DB
}

var _ org.Repository = (*OrgRepository)(nil) // interface compliance check

func NewOrgRepository(db *DB) *OrgRepository {
	return &OrgRepository{db: db}
}

func (repo *OrgRepository) CreateOrg(ctx context.Context, o org.Organization) (org.Organization, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	repo.db.orgs[o.ID] = o
	return o, nil
}

func (repo *OrgRepository) GetOrgByID(ctx context.Context, id string) (org.Organization, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	o, ok := repo.db.orgs[id]
	if !ok {
		return org.Organization{}, org.ErrNotFound
	}
	return o, nil
}

func (repo *OrgRepository) GetOrgByKey(ctx context.Context, key string) (org.Organization, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, o := range repo.db.orgs {
		if o.Key == key {
			return o, nil
		}
	}
	return org.Organization{}, org.ErrNotFound
}
