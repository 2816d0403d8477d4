// Command taxopick picks taxonomy terms for a custom field and inspects
// taxonomies and stored selections.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/taxopick/pkg/api"
	"github.com/Dicklesworthstone/taxopick/pkg/config"
	"github.com/Dicklesworthstone/taxopick/pkg/loader"
	"github.com/Dicklesworthstone/taxopick/pkg/logging"
	"github.com/Dicklesworthstone/taxopick/pkg/tree"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile  string
	logLevel string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taxopick",
		Short:         "Pick taxonomy terms for a custom field",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: a.cfgFile})
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			a.cfg = cfg

			log, _, err := logging.New(logging.Options{Level: cfg.Log.Level, Output: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			a.log = log
			if cfg.Source != "" {
				log.WithField("path", cfg.Source).Debug("config loaded")
			}
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./taxopick.yaml or "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newSelectCmd(a),
		newTreeCmd(a),
		newShowCmd(a),
		newCheckCmd(a),
		newLocationCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

// source returns the fixture source when a path is given, otherwise the
// remote API client.
func (a *app) source(fixture string) (loader.Source, error) {
	if fixture != "" {
		return loader.OpenFileSource(fixture)
	}
	if err := a.cfg.Validate(true); err != nil {
		return nil, err
	}
	return api.New(a.cfg.Client()), nil
}

// treeOptions turns the configured locale into builder options.
func (a *app) treeOptions() ([]tree.Option, error) {
	tag, err := language.Parse(a.cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", a.cfg.Locale, err)
	}
	return []tree.Option{tree.WithLocale(tag)}, nil
}

// dataDir is ~/.taxopick, home of logs and view state.
func dataDir() (string, error) {
	logs, err := logging.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Dir(logs), nil
}
