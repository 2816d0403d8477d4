package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/taxopick/pkg/config"
	"github.com/Dicklesworthstone/taxopick/pkg/export"
	"github.com/Dicklesworthstone/taxopick/pkg/fieldstore"
	"github.com/Dicklesworthstone/taxopick/pkg/loader"
	"github.com/Dicklesworthstone/taxopick/pkg/location"
	"github.com/Dicklesworthstone/taxopick/pkg/logging"
	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/tree"
	"github.com/Dicklesworthstone/taxopick/pkg/ui"
)

// errCyclesFound makes `check` exit non-zero.
var errCyclesFound = errors.New("parent cycles found")

func newSelectCmd(a *app) *cobra.Command {
	var fixture, stateDir string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Open the term picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(fixture == ""); err != nil {
				return err
			}
			if len(a.cfg.Location) > 0 {
				if active := location.Active(a.cfg.Location); active != location.CustomField {
					return fmt.Errorf("active host location is %q, the picker runs in %s", active, location.CustomField)
				}
			}

			src, err := a.source(fixture)
			if err != nil {
				return err
			}
			opts, err := a.treeOptions()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			// the TUI owns the terminal, so logs go to a file
			log, closeLog, err := logging.New(logging.Options{Level: a.cfg.Log.Level, ToFile: true, File: a.cfg.Log.File})
			if err != nil {
				return err
			}
			defer closeLog()

			if stateDir == "" {
				if stateDir, err = dataDir(); err != nil {
					return err
				}
			}

			m := ui.NewModel(ui.Options{
				Load:     ui.LoadCmd(cmd.Context(), src, opts...),
				Store:    store,
				Log:      log,
				Theme:    ui.DefaultTheme(lipgloss.DefaultRenderer()),
				StateDir: stateDir,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "read taxonomies from a JSON file instead of the API")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "directory for expand/collapse state (default ~/.taxopick)")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var fixture, format string

	cmd := &cobra.Command{
		Use:   "tree [taxonomy-uid]",
		Short: "Print the term forest of every taxonomy, or of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.source(fixture)
			if err != nil {
				return err
			}
			opts, err := a.treeOptions()
			if err != nil {
				return err
			}
			nodes, err := loader.Load(cmd.Context(), src, opts...)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				nodes, err = filterTaxonomy(nodes, args[0])
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				writeForestText(out, nodes)
				return nil
			case "markdown":
				_, err := io.WriteString(out, export.ForestMarkdown(nodes, "Taxonomy terms"))
				return err
			default:
				return writeEncoded(out, format, nodes)
			}
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "read taxonomies from a JSON file instead of the API")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml, markdown")
	return cmd
}

func filterTaxonomy(nodes []*model.TaxonomyNode, uid string) ([]*model.TaxonomyNode, error) {
	for _, n := range nodes {
		if n.UID == uid {
			return []*model.TaxonomyNode{n}, nil
		}
	}
	return nil, fmt.Errorf("taxonomy %q not found", uid)
}

func writeForestText(w io.Writer, nodes []*model.TaxonomyNode) {
	for _, tax := range nodes {
		fmt.Fprintf(w, "%s (%s)\n", tax.Name, tax.UID)
		tree.Walk(tax.Terms, func(n *model.TermNode, depth int) bool {
			fmt.Fprintf(w, "%s%s [%s]\n", strings.Repeat("  ", depth+1), n.Name, n.UID)
			return true
		})
	}
}

// writeEncoded writes v as json or yaml.
func writeEncoded(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newShowCmd(a *app) *cobra.Command {
	var format string
	var watch bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			printSelection := func() error {
				data, err := store.GetData()
				if err != nil {
					return err
				}
				return writeSelection(out, format, data)
			}
			if err := printSelection(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			file, ok := store.(*fieldstore.File)
			if !ok {
				return fmt.Errorf("--watch needs the file store, configured store is %q", a.cfg.Store.Kind)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return fieldstore.Watch(ctx, file.Path(), func() {
				if err := printSelection(); err != nil {
					a.log.WithError(err).Warn("reload selection")
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml, markdown")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print again whenever the store file changes")
	return cmd
}

func writeSelection(w io.Writer, format string, data model.FieldData) error {
	if format != "markdown" {
		return writeEncoded(w, format, data)
	}
	md := export.SelectionMarkdown(data.Data, "Selected terms")
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			width = 80
		}
		if rendered, err := export.RenderTerminal(md, width); err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

func newCheckCmd(a *app) *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report orphans, duplicate uids and parent cycles in every taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.source(fixture)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), src, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "read taxonomies from a JSON file instead of the API")
	return cmd
}

func runCheck(ctx context.Context, src loader.Source, out io.Writer) error {
	taxonomies, err := src.ListTaxonomies(ctx)
	if err != nil {
		return err
	}

	cycles := false
	for _, tax := range taxonomies {
		records, err := src.ListTerms(ctx, tax.UID)
		if err != nil {
			return err
		}
		report := tree.Diagnose(records)
		fmt.Fprintf(out, "%s (%s): %d terms", tax.Name, tax.UID, len(records))
		if report.OK() {
			fmt.Fprintln(out, ", ok")
			continue
		}
		fmt.Fprintln(out)
		for _, o := range report.Orphans {
			fmt.Fprintf(out, "  orphan %s: parent %s missing, shown as root\n", o.UID, o.ParentUID)
		}
		for _, uid := range report.Duplicates {
			fmt.Fprintf(out, "  duplicate uid %s: first record kept\n", uid)
		}
		for _, c := range report.Cycles {
			fmt.Fprintf(out, "  cycle %s: terms hidden\n", strings.Join(c, " -> "))
			cycles = true
		}
	}
	if cycles {
		return errCyclesFound
	}
	return nil
}

func newLocationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "location",
		Short: "Print the active host location",
		RunE: func(cmd *cobra.Command, args []string) error {
			active := location.Active(a.cfg.Location)
			if active == "" {
				active = "none"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), active)
			return err
		},
	}
}

// runInitForm asks for the settings interactively. Tests replace it.
var runInitForm = func(cfg *config.Config) error {
	timeout := cfg.API.Timeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Value(&cfg.API.BaseURL),
			huh.NewInput().
				Title("Management token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.API.ManagementToken),
			huh.NewInput().
				Title("Stack API key").
				Value(&cfg.API.APIKey),
			huh.NewInput().
				Title("Request timeout").
				Description("0s waits forever").
				Value(&timeout).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Field storage").
				Options(huh.NewOptions(config.StoreFile, config.StoreSQLite, config.StoreMemory)...).
				Value(&cfg.Store.Kind),
			huh.NewInput().
				Title("Storage path").
				Value(&cfg.Store.Path),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return err
	}
	cfg.API.Timeout = d
	return nil
}

func newInitCmd(a *app) *cobra.Command {
	var path string
	var yes, gitignore bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if !yes {
				if err := runInitForm(&cfg); err != nil {
					return err
				}
			}
			if err := cfg.Validate(false); err != nil {
				return err
			}
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Write(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

			if gitignore && cfg.Store.Kind != config.StoreMemory && !filepath.IsAbs(cfg.Store.Path) {
				if err := config.EnsureGitignored("", cfg.Store.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "where to write the config (default "+config.DefaultPath()+")")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the form and write the current settings")
	cmd.Flags().BoolVar(&gitignore, "gitignore", true, "add a relative store path to ./.gitignore")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxopick %s\n", version)
		},
	}
}
