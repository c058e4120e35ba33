package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/todomaster/internal/credential"
)

func newSecretCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credentials in the system keyring",
		Long:  "Manage credentials in the system keyring. The Redis backend reads " + credential.RedisPasswordKey + " when its URL carries no password.",
	}
	cmd.AddCommand(newSecretSetCmd(app))
	cmd.AddCommand(newSecretRmCmd(app))
	return cmd
}

func newSecretSetCmd(app *App) *cobra.Command {
	var stdin bool

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Store a credential (prompts unless --stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if stdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading secret from stdin: %w", err)
				}
				value = strings.TrimRight(line, "\r\n")
			} else {
				err := huh.NewInput().
					Title("Value for " + args[0]).
					EchoMode(huh.EchoModePassword).
					Value(&value).
					Run()
				if err != nil {
					return fmt.Errorf("prompting for secret: %w", err)
				}
			}
			if value == "" {
				return errors.New("secret must not be empty")
			}
			if err := credential.Set(args[0], value); err != nil {
				return err
			}
			app.logger.Debug("stored credential", "name", args[0])
			return writeOut(cmd, app, map[string]string{"stored": args[0]}, "stored "+args[0])
		},
	}

	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read the value from the first line of stdin")
	return cmd
}

func newSecretRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"removed": args[0]}, "removed "+args[0])
		},
	}
}
