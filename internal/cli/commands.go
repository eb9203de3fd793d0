package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"labattendance/internal/attendance"
)

func newClockInCommand(opts *RootOptions) *cobra.Command {
	var identifier, name string
	cmd := &cobra.Command{
		Use:   "clock-in",
		Short: "Clock a student in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := svc.ClockIn(cmd.Context(), identifier, name)
			return report(cmd.OutOrStdout(), opts.Format, out, err)
		},
	}
	cmd.Flags().StringVar(&identifier, "id", "", "student identifier (matric/student number)")
	cmd.Flags().StringVar(&name, "name", "", "student name")
	return cmd
}

func newClockOutCommand(opts *RootOptions) *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "clock-out",
		Short: "Clock a student out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := svc.ClockOut(cmd.Context(), identifier)
			return report(cmd.OutOrStdout(), opts.Format, out, err)
		},
	}
	cmd.Flags().StringVar(&identifier, "id", "", "student identifier (matric/student number)")
	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "View attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := svc.Records(cmd.Context())
			if err != nil {
				return exitFor(err)
			}
			if opts.Format == "json" {
				if records == nil {
					records = []attendance.Record{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			RenderRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func newMenuCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, opts)
		},
	}
}

// report prints the outcome of a one-shot command.
func report(w io.Writer, format string, out attendance.Outcome, err error) error {
	if format == "json" {
		if err != nil {
			_ = writeJSON(w, map[string]string{"error": err.Error()})
			return exitFor(err)
		}
		return writeJSON(w, map[string]any{"message": out.Message(), "record": out.Record})
	}
	if err != nil {
		fmt.Fprintln(w, describe(err))
		return exitFor(err)
	}
	fmt.Fprintln(w, "Success: "+out.Message())
	return nil
}

const menuRule = "========================================"

func runMenu(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	svc, closeFn, err := opts.openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	w := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	prompt := func(label string) (string, bool) {
		fmt.Fprint(w, label)
		if !in.Scan() {
			return "", false
		}
		return strings.TrimSpace(in.Text()), true
	}

	fmt.Fprintln(w, "Welcome to the Student Lab Attendance System")
	for {
		fmt.Fprintln(w)
		fmt.Fprintln(w, menuRule)
		fmt.Fprintln(w, "  Student Lab Attendance System")
		fmt.Fprintln(w, menuRule)
		fmt.Fprintln(w, "1. Clock In")
		fmt.Fprintln(w, "2. Clock Out")
		fmt.Fprintln(w, "3. View Attendance Records")
		fmt.Fprintln(w, "4. Exit")
		fmt.Fprintln(w, menuRule)

		choice, ok := prompt("\nEnter your choice (1-4): ")
		if !ok {
			fmt.Fprintln(w)
			return in.Err()
		}

		switch choice {
		case "1":
			fmt.Fprintln(w, "\n--- Clock In ---")
			identifier, ok := prompt("Enter Student ID: ")
			if !ok {
				return in.Err()
			}
			name, ok := prompt("Enter Student Name: ")
			if !ok {
				return in.Err()
			}
			out, err := svc.ClockIn(ctx, identifier, name)
			printOutcome(w, out, err)
		case "2":
			fmt.Fprintln(w, "\n--- Clock Out ---")
			identifier, ok := prompt("Enter Student ID: ")
			if !ok {
				return in.Err()
			}
			out, err := svc.ClockOut(ctx, identifier)
			printOutcome(w, out, err)
		case "3":
			fmt.Fprintln(w, "\n--- Attendance Records ---")
			records, err := svc.Records(ctx)
			if err != nil {
				fmt.Fprintln(w, describe(err))
				continue
			}
			RenderRecords(w, records)
		case "4":
			fmt.Fprintln(w, "\nExiting system. Goodbye!")
			return nil
		default:
			fmt.Fprintln(w, "Invalid choice. Please enter a number between 1 and 4.")
		}
	}
}

func printOutcome(w io.Writer, out attendance.Outcome, err error) {
	if err != nil {
		fmt.Fprintln(w, describe(err))
		return
	}
	fmt.Fprintln(w, "Success: "+out.Message())
}
