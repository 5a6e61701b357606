package main

import (
	"fmt"

	"github.com/flavorsense/flavorsense/core/review"
)

func (cli *commandLine) resetWeek() error {
	n, err := cli.reviewSvc.ResetWeek()
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d review rows reset\n", n)
	return nil
}

func (cli *commandLine) pending() error {
	rows, err := cli.reviewSvc.Pending(review.NowFunc())
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintln(cli.out, row.Email)
	}
	return nil
}

// remind runs one reminder broadcast (meant for cron).
func (cli *commandLine) remind() error {
	sum, err := cli.reminders.SendReminders()
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, sum.String())
	return nil
}
