package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/lchelle/servicediary/core"
)

// Role is the closed set of principals that may hold a token. Access control
// matches on these variants, never on raw claim strings.
type Role string

const (
	RoleStudent      Role = "student"
	RoleTeacher      Role = "teacher"
	RoleOrganization Role = "organization"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a decoded token claim back onto the Role enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleOrganization:
		return RoleOrganization, nil
	}
	return "", errors.Wrap(ErrUnknownRole, s)
}

func (r Role) String() string { return string(r) }

// User is a student or a teacher. Organizations are not users; they
// authenticate with an access key (see core/org).
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"name" db:"full_name"`
	Role         Role      `json:"role" db:"user_type"`
	PasswordHash []byte    `json:"-" db:"password_hash"`

	// student-only fields
	StudentID  string  `json:"studentId,omitempty" db:"student_id"`
	Grade      int     `json:"grade,omitempty" db:"grade"`
	TotalHours float64 `json:"totalHours" db:"total_hours"`

	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"name" validate:"required"`
	Role     Role   `json:"role" validate:"required"`
	Password string `json:"password" validate:"required"`

	// required for students only
	StudentID string `json:"studentId"`
	Grade     int    `json:"grade" validate:"omitempty,min=8,max=12"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.StudentID = core.CleanString(nu.StudentID, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if _, err := ParseRole(string(nu.Role)); err != nil || nu.Role == RoleOrganization {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "role must be student or teacher"})
	}
	if nu.Role == RoleStudent {
		var flds []core.FieldError
		if nu.StudentID == "" {
			flds = append(flds, core.FieldError{Field: "studentId", Error: "this field is required for students"})
		}
		if nu.Grade < 8 || nu.Grade > 12 {
			flds = append(flds, core.FieldError{Field: "grade", Error: "grade must be between 8 and 12"})
		}
		if len(flds) > 0 {
			return core.NewValidationError(nil, flds...)
		}
	}
	return nil
}
