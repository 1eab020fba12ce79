package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		// GetUserByEmail only matches users holding the given role; a student
		// and a teacher can never share an email anyway (unique column).
		GetUserByEmail(ctx context.Context, email string, role Role) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Email:     nu.Email,
		FullName:  nu.FullName,
		Role:      nu.Role,
		StudentID: nu.StudentID,
		Grade:     nu.Grade,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string, role Role) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */), role)
}

// Authenticate checks a student's or teacher's credentials. Unknown email and
// wrong password both map to ErrNotFound so the API reports them identically.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string, role Role) (User, error) {
	usr, err := svc.GetByEmail(ctx, email, role)
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}
