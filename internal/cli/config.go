package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andy/kihopunch/internal/config"
	"github.com/andy/kihopunch/internal/keyring"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file and the stored API key",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			printLine(c.out, "✓ Wrote default configuration to "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:         "path",
			Short:       "Print the config file path",
			Args:        cobra.NoArgs,
			Annotations: map[string]string{annotationNoBanner: "true"},
			Run: func(cmd *cobra.Command, args []string) {
				printLine(c.out, c.configPath())
			},
		},
		&cobra.Command{
			Use:   "set-key",
			Short: "Store the API key in the system keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.load(cmd)
				if err != nil {
					return err
				}
				keys := a.Keyring
				if !keys.IsAvailable() {
					return errors.New("system keyring is not available, set " + keyring.EnvAPIKey + " instead")
				}

				fmt.Fprint(c.out, "Enter Kiho API key: ")
				key, err := c.readSecret()
				printLine(c.out, "")
				if err != nil {
					return err
				}
				if key == "" {
					return errors.New("API key cannot be empty")
				}

				if err := keys.SetKey(key); err != nil {
					return err
				}
				printLine(c.out, "✓ API key stored in the system keyring")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete-key",
			Short: "Remove the API key from the system keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.load(cmd)
				if err != nil {
					return err
				}
				if !c.confirmPrompt("Remove the stored API key?") {
					printLine(c.out, "Cancelled.")
					return nil
				}

				if err := a.Keyring.DeleteKey(); err != nil {
					if errors.Is(err, keyring.ErrKeyNotFound) {
						printLine(c.out, "No API key stored.")
						return nil
					}
					return err
				}
				printLine(c.out, "✓ API key removed from the system keyring")
				return nil
			},
		},
	)

	return cmd
}

func (c *cli) configPath() string {
	if c.opts.ConfigPath != "" {
		return c.opts.ConfigPath
	}
	return config.DefaultConfigPath()
}

// readSecret reads without echo from a terminal, or a plain line otherwise
func (c *cli) readSecret() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *cli) confirmPrompt(message string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", message)
	input, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
