// Command smoke calls a running staffnote server, one endpoint per
// subcommand, or runs the full check suite with "smoke run".
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/staffnote/internal/smoke"
	"github.com/okian/staffnote/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	cfg smoke.Config
}

func (o *options) client() *smoke.Client {
	return smoke.NewClient(o.cfg.BaseURL, o.cfg.AuthKey, o.cfg.Timeout)
}

func newRootCmd(out io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "smoke",
		Short:         "Exercise a running staffnote server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&o.cfg.BaseURL, "url", envOr("API_BASE_URL", smoke.DefaultBaseURL), "base URL of the service ($API_BASE_URL)")
	flags.StringVar(&o.cfg.AuthKey, "key", os.Getenv("SECRET_AUTH_KEY"), "X-Auth-Key value ($SECRET_AUTH_KEY)")
	flags.DurationVar(&o.cfg.Timeout, "timeout", smoke.DefaultTimeout, "HTTP request timeout")

	root.AddCommand(
		helloCmd(o),
		dataCmd(o),
		employeeCmd(o),
		eventCmd(o),
		meetMapCmd(o),
		summarizeCmd(o),
		runCmd(o),
	)
	return root
}

func helloCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "GET /",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return show(cmd)(o.client().Hello(cmd.Context()))
		},
	}
}

func dataCmd(o *options) *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "data",
		Short: "POST /data with the given JSON body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var v any
			if err := json.Unmarshal([]byte(body), &v); err != nil {
				return fmt.Errorf("--body is not JSON: %w", err)
			}
			return show(cmd)(o.client().Data(cmd.Context(), v))
		},
	}
	cmd.Flags().StringVar(&body, "body", `{"message":"This is a test message from smoke"}`, "JSON body")
	return cmd
}

func employeeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Create or read employees",
	}

	var req smoke.EmployeeRequest
	var role string
	create := &cobra.Command{
		Use:   "create <id>",
		Short: "POST /employees/{id}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" {
				req.Role = &role
			}
			return show(cmd)(o.client().CreateEmployee(cmd.Context(), args[0], req))
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "employee name")
	create.Flags().StringVar(&req.Email, "email", "", "employee email")
	create.Flags().StringVar(&role, "role", "", "employee role")
	create.Flags().BoolVar(&req.DeleteFlag, "delete-flag", false, "mark as deleted")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "GET /employees/{id}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd)(o.client().GetEmployee(cmd.Context(), args[0]))
		},
	}

	cmd.AddCommand(create, get)
	return cmd
}

func eventCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record employee events",
	}

	var req smoke.EventRequest
	var details string
	create := &cobra.Command{
		Use:   "create <employee-id>",
		Short: "POST /employees/{id}/events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if details != "" {
				if err := json.Unmarshal([]byte(details), &req.Details); err != nil {
					return fmt.Errorf("--details is not a JSON object: %w", err)
				}
			}
			return show(cmd)(o.client().CreateEvent(cmd.Context(), args[0], req))
		},
	}
	create.Flags().StringVar(&req.EventType, "type", "", "event type")
	create.Flags().StringVar(&req.Description, "description", "", "event description")
	create.Flags().StringVar(&req.Timestamp, "timestamp", "", "ISO-8601 timestamp (default now)")
	create.Flags().StringVar(&details, "details", "", "JSON object with extra details")

	cmd.AddCommand(create)
	return cmd
}

func meetMapCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meet-map",
		Short: "Set or read Google Meet name mappings",
	}

	set := &cobra.Command{
		Use:   "set <email> <google-meet-name>",
		Short: "POST /google_meet_employee_map/{email}",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd)(o.client().SetMeetMapping(cmd.Context(), args[0], args[1]))
		},
	}
	get := &cobra.Command{
		Use:   "get <email>",
		Short: "GET /google_meet_employee_map/{email}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd)(o.client().GetMeetMapping(cmd.Context(), args[0]))
		},
	}

	cmd.AddCommand(set, get)
	return cmd
}

func summarizeCmd(o *options) *cobra.Command {
	var file string
	var save bool
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "POST /meeting-summary/meeting with a transcript file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			transcript, err := readTranscript(cmd, file)
			if err != nil {
				return err
			}
			return show(cmd)(o.client().Summarize(cmd.Context(), smoke.SummaryRequest{
				TranscriptContent: transcript,
				SaveToFirestore:   save,
			}))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "transcript file, - for stdin")
	cmd.Flags().BoolVar(&save, "save", false, "persist the summary")
	return cmd
}

func runCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every smoke check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.OutOrStdout()); err != nil {
				return err
			}
			if o.cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			_, err := smoke.Run(cmd.Context(), &o.cfg, logger.Named("smoke"))
			return err
		},
	}
	cmd.Flags().StringVar(&o.cfg.EmployeeID, "employee", smoke.DefaultEmployeeID, "employee id used by the event checks")
	cmd.Flags().BoolVarP(&o.cfg.Verbose, "verbose", "v", false, "debug logging")
	return cmd
}

// show writes status and body to the command output.
func show(cmd *cobra.Command) func(smoke.Response, error) error {
	return func(resp smoke.Response, err error) error {
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Status Code: %d\nResponse Body: %s\n", resp.Status, resp.Body)
		return nil
	}
}

func readTranscript(cmd *cobra.Command, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
