package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/user"
)

type authApi struct {
	conf     *core.Config
	userSvc  *user.Service
	orgSvc   *org.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{
		conf:     deps.Conf,
		userSvc:  deps.UserSvc,
		orgSvc:   deps.OrgSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/login/student", api.studentLogin)
	ag.POST("/login/teacher", api.teacherLogin)
	ag.POST("/verify/organization", api.verifyOrganization)
}

// Handlers

func (api *authApi) studentLogin(ctx echo.Context) error {
	return api.login(ctx, user.RoleStudent)
}

func (api *authApi) teacherLogin(ctx echo.Context) error {
	return api.login(ctx, user.RoleTeacher)
}

func (api *authApi) login(ctx echo.Context, role user.Role) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.userSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password, role)
	if err != nil {
		// unknown email and wrong password answer identically
		if errors.Cause(err) == user.ErrNotFound {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserPayload(usr)})
}

func (api *authApi) verifyOrganization(ctx echo.Context) error {
	var data VerifyOrgRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOrgRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	o, err := api.orgSvc.VerifyKey(ctx.Request().Context(), data.OrgKey)
	if err != nil {
		if errors.Cause(err) == org.ErrNotFound {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{
				"success": false,
				"message": "Invalid organization key",
			})
		}
		return errors.Wrap(err, "verifying organization key")
	}

	token, err := GenerateToken(api.conf, GetOrgClaims(api.conf, o))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, VerifyOrgResponse{
		Success: true,
		Token:   token,
		Organization: OrgPayload{
			Name:          o.Name,
			ContactPerson: o.ContactPerson,
		},
	})
}

// Request/response shapes

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// UserPayload is the user object returned on login; student-only fields
	// are dropped from teacher payloads.
	UserPayload struct {
		ID         string   `json:"id"`
		Email      string   `json:"email"`
		Name       string   `json:"name"`
		StudentID  string   `json:"studentId,omitempty"`
		Grade      int      `json:"grade,omitempty"`
		TotalHours *float64 `json:"totalHours,omitempty"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		User  UserPayload `json:"user"`
	}

	VerifyOrgRequest struct {
		OrgKey string `json:"orgKey" validate:"required"`
	}

	OrgPayload struct {
		Name          string `json:"name"`
		ContactPerson string `json:"contactPerson"`
	}

	VerifyOrgResponse struct {
		Success      bool       `json:"success"`
		Token        string     `json:"token"`
		Organization OrgPayload `json:"organization"`
	}
)

func newUserPayload(usr user.User) UserPayload {
	p := UserPayload{
		ID:    usr.ID,
		Email: usr.Email,
		Name:  usr.FullName,
	}
	if usr.IsStudent() {
		p.StudentID = usr.StudentID
		p.Grade = usr.Grade
		p.TotalHours = &usr.TotalHours
	}
	return p
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (vr *VerifyOrgRequest) Validate(validate *validator.Validate) error {
	vr.OrgKey = core.CleanString(vr.OrgKey)
	return validate.Struct(vr)
}
