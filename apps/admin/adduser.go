package main

import (
	"context"

	"github.com/lchelle/servicediary/core/user"
)

// addUser creates a student or teacher account.
func (cli *commandLine) addUser(email, name, role, studentID string, grade int, pwd string) error {
	ctx := context.Background()

	nu := user.NewUser{
		Email:     email,
		FullName:  name,
		Role:      user.Role(role),
		Password:  pwd,
		StudentID: studentID,
		Grade:     grade,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}

	svc := user.NewService(cli.usrRepo)
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		return err
	}
	logger.Printf("%s %q created (id %s)", usr.Role, usr.Email, usr.ID)
	return nil
}
