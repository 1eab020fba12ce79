package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/record"
	"github.com/lchelle/servicediary/core/user"
)

const contextTokenKey = "principalToken"

// newJWTConfig is the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// Subject carries the user or organization id; Role is a closed enum value.
type Claims struct {
	jwt.StandardClaims
	Role      string `json:"userType"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

func GetUserClaims(conf *core.Config, usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.UserJWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:      usr.Role.String(),
		Name:      usr.FullName,
		Email:     usr.Email,
		StudentID: usr.StudentID,
	}
}

// GetOrgClaims carries a shorter expiry than user claims; organization
// sessions are throwaway key verifications.
func GetOrgClaims(conf *core.Config, o org.Organization) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   o.ID,
			ExpiresAt: now.Add(conf.Server.OrgJWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: user.RoleOrganization.String(),
		Name: o.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextActor resolves the authenticated principal logging hours.
func getContextActor(ctx echo.Context) (record.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return record.Actor{}, errors.Wrap(err, "getting context claims")
	}
	role, err := user.ParseRole(claims.Role)
	if err != nil {
		return record.Actor{}, errHttpForbidden
	}
	return record.Actor{ID: claims.Subject, Role: role}, nil
}
