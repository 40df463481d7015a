package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/teacher"
)

// addTeacher creates a TEACHER account and its profile.
// Teachers may register everyone else through the API, so the first one comes from here.
func (cli *commandLine) addTeacher(nt teacher.NewTeacher) error {
	if err := nt.Validate(cli.validate); err != nil {
		return err
	}

	ctx := context.Background()
	return cli.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := cli.teachers.CheckEmployeeCodeUniqueness(ctx, nt.EmployeeCode); err != nil {
			return err
		}
		acc, err := cli.accounts.Create(ctx, nt.NewAccount)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		t, err := cli.teachers.CreateTeacher(ctx, teacher.Teacher{
			AccountID:    acc.ID,
			FirstName:    nt.FirstName,
			LastName:     nt.LastName,
			EmployeeCode: nt.EmployeeCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		fmt.Printf("teacher %q created (id: %d, role: %s)\n", acc.Username, t.ID, core.RoleTeacher)
		return nil
	})
}
