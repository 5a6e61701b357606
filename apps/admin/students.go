package main

import (
	"fmt"

	"github.com/flavorsense/flavorsense/core/student"
)

// addStudent registers a student with the same rules as the web form.
func (cli *commandLine) addStudent(name, email, pwd string) error {
	st, err := cli.studentSvc.Register(student.NewStudent{
		Name:     name,
		Email:    email,
		Password: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Student %s <%s> registered\n", st.Name, st.Email)
	return nil
}
