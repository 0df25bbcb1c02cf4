package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"

	"gametext/internal/config"
	"gametext/internal/language"
	"gametext/internal/model"
	"gametext/internal/parser"
	"gametext/internal/table"
)

// app holds the settings shared by every command, resolved from the
// environment and the global flags.
type app struct {
	cfg     *config.Config
	langs   language.Languages
	options model.Options
	enc     encoding.Encoding
}

// Execute runs the CLI application.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	a := &app{}
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "gametext",
		Short:        "Load, convert, merge and publish game string tables",
		Long:         "Tooling for localized game string tables in binary (.csf) and text (.str, .multistr) formats.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")
	flags.StringVar(&cfg.Languages, "lang", cfg.Languages, "Languages to process: all, none or a comma list of codes/names")
	flags.StringVar(&cfg.Options, "options", cfg.Options, "Table options, comma separated")
	flags.StringVar(&cfg.TextEncoding, "encoding", cfg.TextEncoding, "Character set of text tables")
	flags.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "SQLite path or postgres:// URL of the table store")
	flags.String("format", "auto", "Table format: auto, csf, str or multistr")

	rootCmd.AddCommand(convertCmd(a))
	rootCmd.AddCommand(infoCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(mergeCmd(a))
	rootCmd.AddCommand(lookupCmd(a))
	rootCmd.AddCommand(scanCmd(a))
	rootCmd.AddCommand(publishCmd(a))
	rootCmd.AddCommand(tablesCmd(a))
	rootCmd.AddCommand(pullCmd(a))
	rootCmd.AddCommand(graphCmd(a))

	return rootCmd
}

func (a *app) setup(cfg *config.Config) error {
	zerolog.SetGlobalLevel(cfg.Level())

	langs, err := cfg.LanguageSet()
	if err != nil {
		return err
	}
	opts, err := cfg.TableOptions()
	if err != nil {
		return err
	}
	enc, err := cfg.Encoding()
	if err != nil {
		return err
	}

	a.cfg, a.langs, a.options, a.enc = cfg, langs, opts, enc
	log.Debug().
		Str("languages", langs.String()).
		Str("options", opts.String()).
		Str("encoding", parser.EncodingName(enc)).
		Msg("Configuration loaded")
	return nil
}

// newManager creates a Manager logging through the global logger. Cap
// violations are logged by the Manager and counted by the caller through
// the returned counter.
func (a *app) newManager() (*table.Manager, *int) {
	exceeded := new(int)
	m := table.NewManager(table.Config{
		Logger:   log.Logger,
		Options:  a.options,
		Encoding: a.enc,
		Assert:   func(table.LengthReport) { *exceeded++ },
	})
	if a.options == model.NoOptions {
		m.SetOptions(model.NoOptions)
	}
	return m, exceeded
}

// loadTable loads path into a fresh Manager.
func (a *app) loadTable(path string, format parser.Format, active string) (*table.Manager, error) {
	m, _ := a.newManager()
	if err := a.loadInto(m, path, format, active); err != nil {
		return nil, err
	}
	return m, nil
}

// loadInto loads path into m. When the active language ends up without
// entries, the first loaded language becomes active.
func (a *app) loadInto(m *table.Manager, path string, format parser.Format, active string) error {
	if active != "" {
		id, ok := language.Parse(active)
		if !ok {
			return fmt.Errorf("unknown language %q", active)
		}
		m.SetActiveLanguage(id)
	}
	if err := m.Load(path, format, a.langs); err != nil {
		return err
	}
	ensureActive(m)
	return nil
}

func ensureActive(m *table.Manager) {
	if len(m.Entries(m.ActiveLanguage())) > 0 {
		return
	}
	if first, ok := m.Loaded().First(); ok {
		m.SetActiveLanguage(first)
	}
}

func parseFormat(cmd *cobra.Command, name string) (parser.Format, error) {
	v, _ := cmd.Flags().GetString(name)
	return parser.ParseFormat(v)
}

// setupContext returns a context cancelled on SIGINT or SIGTERM.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
