package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/session"
)

func newLoginCmd() *cobra.Command {
	var server, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The password is read from stdin.
The session is stored in the local database and refreshed before it expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server != "" {
				if err := saveServerURL(server); err != nil {
					return err
				}
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if email == "" {
				var err error
				if email, err = prompt(in, out, "Email: "); err != nil {
					return err
				}
			}
			password, err := prompt(in, out, "Password: ")
			if err != nil {
				return err
			}
			if err := validateCredentials(email, password); err != nil {
				return err
			}

			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.sessions.SignIn(cmd.Context(), strings.ToLower(email), password)
			if err != nil {
				return fmt.Errorf("signing in: %w", err)
			}
			return printSignedIn(out, u)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "backend URL to save in the config")
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if omitted)")

	return cmd
}

func newSignupCmd() *cobra.Command {
	var email, name, phone string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a customer account",
		Long:  "Create a customer account and sign in. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			password, err := prompt(in, out, "Password: ")
			if err != nil {
				return err
			}
			req := session.SignUpRequest{
				Email:    strings.ToLower(strings.TrimSpace(email)),
				Password: password,
				FullName: strings.TrimSpace(name),
				Phone:    strings.TrimSpace(phone),
			}
			if err := validateSignUp(req); err != nil {
				return err
			}

			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.sessions.SignUp(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("signing up: %w", err)
			}
			return printSignedIn(out, u)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// prompt writes label and reads one trimmed line.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// validateCredentials checks that both sign-in fields are present.
func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("no email provided")
	}
	if password == "" {
		return fmt.Errorf("no password provided")
	}
	return nil
}

func validateSignUp(req session.SignUpRequest) error {
	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return fmt.Errorf("a valid email is required")
	case req.FullName == "":
		return fmt.Errorf("full name is required")
	case len(req.Password) < 8:
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func saveServerURL(server string) error {
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	cfg.ServerURL = strings.TrimRight(server, "/")
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func printSignedIn(out io.Writer, u *account.User) error {
	if isJSON() {
		return printJSON(out, u)
	}
	fmt.Fprintf(out, "\n✓ Signed in as %s (%s)\n", u.DisplayName(), u.Role.Label())
	return nil
}
