package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-gradebook/internal/grading"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/standards"
)

func newCompositeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "composite STUDENT ASSIGNMENT",
		Short: "Composite grade of one student on one assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			res, err := svc.Composite(cmd.Context(), args[0], args[1], nil)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), res)
		},
	}
}

func newProgressCmd(a *app) *cobra.Command {
	var standardID, from, to string
	cmd := &cobra.Command{
		Use:   "progress STUDENT",
		Short: "Standards progress report of one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := standards.ProgressOptions{StandardID: standardID}
			var err error
			if opt.From, err = parseDay(from); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if opt.To, err = parseDay(to); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			svc, done, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			rep, err := svc.StudentProgress(cmd.Context(), args[0], opt)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&standardID, "standard", "", "Only this standard")
	cmd.Flags().StringVar(&from, "from", "", "Only ratings after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only ratings before this day (YYYY-MM-DD)")
	return cmd
}

func newFinalGradeCmd(a *app) *cobra.Command {
	var bookPath string
	cmd := &cobra.Command{
		Use:   "final-grade STUDENT",
		Short: "Category-weighted final grade of one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(bookPath)
			if err != nil {
				return err
			}
			defer f.Close()
			var book grading.Book
			if err := yaml.NewDecoder(f).Decode(&book); err != nil {
				return fmt.Errorf("parse %s: %w", bookPath, err)
			}

			svc, done, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			fg, warnings, err := svc.FinalGrade(cmd.Context(), args[0], book)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			return a.render(cmd.OutOrStdout(), fg)
		},
	}
	cmd.Flags().StringVar(&bookPath, "book", "", "YAML category configuration")
	_ = cmd.MarkFlagRequired("book")
	return cmd
}

func newAnalyticsCmd(a *app) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Class analytics across traditional and standards grades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			rep, err := svc.ClassAnalytics(cmd.Context(), subject)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Only assignments of this subject")
	return cmd
}

func newScalesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List the registered proficiency scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := proficiency.Default()
			var out []proficiency.Scale
			for _, t := range reg.Types() {
				s, err := reg.Lookup(t)
				if err != nil {
					return err
				}
				out = append(out, s)
			}
			return a.render(cmd.OutOrStdout(), out)
		},
	}
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", v)
}
