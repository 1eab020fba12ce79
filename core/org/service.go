package org

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
)

// Per-record hour caps. Most organizations (and all teachers) are limited to
// DefaultMaxHours; the organization holding the configured extended-hours key
// may log up to ExtendedMaxHours in a single record.
const (
	DefaultMaxHours  float64 = 10
	ExtendedMaxHours float64 = 50
)

var ErrNotFound = errors.New("organization not found")

type (
	Repository interface {
		CreateOrg(ctx context.Context, o Organization) (Organization, error)
		GetOrgByID(ctx context.Context, id string) (Organization, error)
		GetOrgByKey(ctx context.Context, key string) (Organization, error)
	}

	Service struct {
		repo   Repository
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(repo Repository, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, conf: conf, logger: logger}
}

func (svc *Service) Create(ctx context.Context, no NewOrganization) (Organization, error) {
	o := Organization{
		Name:          core.CleanString(no.Name),
		Key:           strings.ToUpper(core.CleanString(no.Key)),
		ContactPerson: core.CleanString(no.ContactPerson),
		ContactEmail:  core.CleanString(no.ContactEmail, true /* lower */),
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateOrg(ctx, o)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Organization, error) {
	return svc.repo.GetOrgByID(ctx, id)
}

// VerifyKey resolves an organization by its access key. Keys are stored and
// compared in upper case.
func (svc *Service) VerifyKey(ctx context.Context, key string) (Organization, error) {
	return svc.repo.GetOrgByKey(ctx, strings.ToUpper(core.CleanString(key)))
}

// HourLimit resolves the maximum hours a single record may carry for the
// acting organization. Lookup failures degrade to the default cap rather than
// failing the caller's request (fail-open, logged).
func (svc *Service) HourLimit(ctx context.Context, orgID string) float64 {
	o, err := svc.repo.GetOrgByID(ctx, orgID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("resolving hour limit for organization %s: %v; using default", orgID, err), err)
		return DefaultMaxHours
	}
	if o.Key == svc.conf.ExtendedHoursOrgKey {
		return ExtendedMaxHours
	}
	return DefaultMaxHours
}
