package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/machibo/backoffice/cmd"
	"github.com/machibo/backoffice/internal/colors"
)

// NewLoginCmd creates the login command with explicit dependencies.
func NewLoginCmd(runtime runtimeFunc) *cobra.Command {
	if runtime == nil {
		panic("NewLoginCmd: runtime dependency cannot be nil")
	}

	var (
		username      string
		password      string
		passwordStdin bool
	)

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Long: `Sign in to the back-office API and store the access token.

USAGE:
    backoffice login [OPTIONS]

OPTIONS:
    -u, --username <name>   Operator username (prompted when omitted)
    --password <secret>     Password (prompted when omitted)
    --password-stdin        Read the password from stdin
    -h, --help              Show this help

EXAMPLES:
    backoffice login -u ops
    echo "$PASS" | backoffice login -u ops --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			in := bufio.NewReader(c.InOrStdin())
			var err error
			if username == "" {
				if username, err = prompt(in, c.OutOrStdout(), "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				label := "Password: "
				if passwordStdin {
					label = ""
				}
				if password, err = prompt(in, c.OutOrStdout(), label); err != nil {
					return err
				}
			}

			rt, err := runtime()
			if err != nil {
				return err
			}
			res, err := rt.Auth.Login(c.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			colors.Success(fmt.Sprintf("Signed in as %s", res.Username))
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Operator username")
	loginCmd.Flags().StringVar(&password, "password", "", "Password")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return loginCmd
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	if label != "" {
		_, _ = fmt.Fprint(out, label)
	}
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var loginCmd = NewLoginCmd(openRuntime)

func init() {
	cmd.RootCmd.AddCommand(loginCmd)
}
