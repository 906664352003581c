// Package cli implements the notectl command line client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gauravnainwal518/note-app/pkg/client"
)

const envPrefix = "NOTECTL"

// app carries the state shared by every subcommand.
type app struct {
	v   *viper.Viper
	out io.Writer
}

// NewRootCommand builds the notectl command tree.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:   "notectl",
		Short: "notectl - command line client for the notes API",
		Long: `notectl logs in with an emailed one-time code or a Google ID token and
manages your notes.

Settings come from flags, NOTECTL_* environment variables or
~/.config/notectl/config.yaml, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}
	root.SetOut(out)

	root.PersistentFlags().String("api-url", "http://localhost:8080/api", "API base URL")
	root.PersistentFlags().String("session-file", defaultSessionFile(), "where --keep stores the session")
	root.PersistentFlags().String("token", "", "session token to use instead of the stored session")
	root.PersistentFlags().String("config", "", "config file (default ~/.config/notectl/config.yaml)")

	root.AddCommand(a.loginCommand())
	root.AddCommand(a.whoamiCommand())
	root.AddCommand(a.notesCommand())
	root.AddCommand(a.logoutCommand())
	return root
}

// Execute runs notectl with os.Args.
func Execute() error {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	path := a.v.GetString("config")
	if path == "" {
		path = filepath.Join(configDir(), "config.yaml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.v.GetString("api-url"))
}

func (a *app) fileStore() *client.FileStore {
	return client.NewFileStore(a.v.GetString("session-file"))
}

// session resolves the credential: an explicit token wins over the stored session.
func (a *app) session() (*client.Session, error) {
	if token := a.v.GetString("token"); token != "" {
		return &client.Session{Token: token}, nil
	}
	s, err := a.fileStore().Load()
	if errors.Is(err, client.ErrNoSession) {
		return nil, fmt.Errorf("%w: run `notectl login` first or set %s_TOKEN", err, envPrefix)
	}
	return s, err
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notectl"
	}
	return filepath.Join(dir, "notectl")
}

func defaultSessionFile() string {
	return filepath.Join(configDir(), "session.yaml")
}
