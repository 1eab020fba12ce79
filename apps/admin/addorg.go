package main

import (
	"context"
	"strings"
	"time"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
)

// addOrg registers an organization with its access key.
func (cli *commandLine) addOrg(name, key, contact, email string) error {
	ctx := context.Background()

	no := org.NewOrganization{
		Name:          core.CleanString(name),
		Key:           strings.ToUpper(core.CleanString(key)),
		ContactPerson: core.CleanString(contact),
		ContactEmail:  core.CleanString(email, true /* lower */),
	}
	if err := cli.validate.Struct(no); err != nil {
		return err
	}

	o, err := cli.orgRepo.CreateOrg(ctx, org.Organization{
		Name:          no.Name,
		Key:           no.Key,
		ContactPerson: no.ContactPerson,
		ContactEmail:  no.ContactEmail,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	logger.Printf("organization %q created (key %s)", o.Name, o.Key)
	return nil
}
