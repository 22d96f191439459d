package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-compactdates/internal/config"
	"github.com/tartampluch/go-compactdates/internal/engine"
	"github.com/tartampluch/go-compactdates/internal/locale"
	"github.com/tartampluch/go-compactdates/internal/server"
)

// cliApp carries the state shared by every subcommand once flags are parsed.
type cliApp struct {
	configPath string
	year       int
	lang       string
	debug      bool

	// clock overrides the real clock in tests.
	clock engine.Clock

	settings  *config.Settings
	catalog   *locale.Catalog
	logCloser io.Closer
}

func (a *cliApp) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close() // Best effort close
	}
}

func (a *cliApp) codec() *engine.Codec {
	c := engine.NewCodec(a.settings.Year, a.catalog.Locale(a.settings.Locale))
	if a.clock != nil {
		c.Clock = a.clock
	}
	return c
}

func newRootCmd(a *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Encode and decode compact date lists like [09/16.01, 06.02]",
		Long: `compactdates converts sets of calendar dates to and from a compact,
human-editable text form grouped by month, renders them for display, and
serves the same operations over a local HTTP API and iCalendar feed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Malformed flag values ("--year abc") are usage errors on every subcommand.
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, config.FlagConfig, "", config.FlagDescConfig)
	pf.IntVar(&a.year, config.FlagYear, 0, config.FlagDescYear)
	pf.StringVar(&a.lang, config.FlagLocale, config.DefaultLanguage, config.FlagDescLocale)
	pf.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newValidateCmd(a),
		newFormatCmd(a),
		newICSCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves settings (file, env, then explicit flags), configures logging
// and loads the translation catalog.
func (a *cliApp) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings(a.configPath)
	if err != nil {
		if errors.Is(err, config.ErrInvalidSettings) {
			return &usageError{err}
		}
		return err
	}

	flags := cmd.Flags()
	if flags.Changed(config.FlagYear) {
		settings.Year = a.year
	}
	if flags.Changed(config.FlagLocale) {
		settings.Locale = a.lang
	}
	if flags.Changed(config.FlagDebug) {
		settings.Debug = a.debug
	}
	if settings.Year < 0 || settings.Year > 9999 {
		return &usageError{errors.New(config.ErrYearRange)}
	}

	level := slog.LevelWarn
	if cmd.Name() == cmdServe {
		level = slog.LevelInfo
	}
	if settings.Debug {
		level = slog.LevelDebug
	}
	a.logCloser = setupLogging(cmd.ErrOrStderr(), level)
	logStartupInfo()

	catalog, err := locale.NewCatalog()
	if err != nil {
		return err
	}
	if !catalog.Supports(settings.Locale) {
		return &usageError{fmt.Errorf("%s: %q (available: %s)",
			config.ErrUnsupportedLang, settings.Locale, strings.Join(catalog.Languages(), ", "))}
	}

	a.settings = settings
	a.catalog = catalog
	return nil
}

const cmdServe = "serve"

func newEncodeCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [date...]",
		Short: "Encode dates (YYYY-MM-DD, DD.MM.YYYY, ...) into a compact value",
		Long: `Encode reads dates from the arguments, or whitespace-separated from stdin
when no argument is given. Unparseable and duplicate dates are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := args
			if len(values) == 0 {
				input, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("%s: %w", config.ErrReadInput, err)
				}
				values = strings.Fields(string(input))
			}
			if len(values) == 0 {
				return &usageError{errors.New(config.ErrNoDates)}
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.codec().Encode(engine.ParseDates(values)))
			return err
		},
	}
}

func newDecodeCmd(a *cliApp) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode <value>",
		Short: "Decode a compact value into ISO dates, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.codec().TryDecode(args[0])
			if err != nil && strict {
				return fmt.Errorf("%s: %w", config.ErrStrictDecode, err)
			}

			out := cmd.OutOrStdout()
			for _, d := range res.Dates {
				if _, err := fmt.Fprintln(out, d); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, config.FlagStrict, false, config.FlagDescStrict)
	return cmd
}

func newValidateCmd(a *cliApp) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <value>",
		Short: "Report which groups of a compact value can be read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.codec()
			report := c.Validate(args[0])

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d/%d groups readable\n", report.ParsedGroups, report.TotalGroups)
			for _, d := range report.Dropped {
				fmt.Fprintf(out, "  dropped %q in group %q: %s\n", d.Token, d.Group, d.Reason)
			}
			if warning := c.Warning(report); warning != "" {
				fmt.Fprintln(out, warning)
			}

			if strict && !report.OK() {
				return errors.New(config.ErrStrictDecode)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, config.FlagStrict, false, config.FlagDescStrict)
	return cmd
}

func newFormatCmd(a *cliApp) *cobra.Command {
	var (
		style  string
		ranges bool
	)

	cmd := &cobra.Command{
		Use:   "format <value>",
		Short: "Render a compact value for display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.codec()
			dates := c.Decode(args[0])

			text := c.Format(dates, style)
			if ranges {
				text = c.FormatRanges(dates)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&style, config.FlagStyle, config.StyleShort, config.FlagDescStyle)
	cmd.Flags().BoolVar(&ranges, config.FlagRanges, false, config.FlagDescRanges)
	cmd.MarkFlagsMutuallyExclusive(config.FlagStyle, config.FlagRanges)
	return cmd
}

func newICSCmd(a *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Convert between compact values and iCalendar data",
	}

	var name string
	export := &cobra.Command{
		Use:   "export <value>",
		Short: "Write an iCalendar feed with one all-day event per date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.codec()
			data, err := engine.ExportICS(c.Decode(args[0]), engine.ExportOptions{Name: name, Clock: c.Clock})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	export.Flags().StringVar(&name, config.FlagCalName, config.DefaultCalName, config.FlagDescCalName)

	var user, password string
	imp := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Read event dates from an iCalendar file or URL and print the compact value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := &engine.Importer{
				Fetcher:  engine.NewHTTPFetcher(),
				User:     user,
				Password: password,
			}
			dates, err := im.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.codec().Encode(dates))
			return err
		},
	}
	imp.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	imp.Flags().StringVar(&password, config.FlagPass, "", config.FlagDescPass)

	cmd.AddCommand(export, imp)
	return cmd
}

func newServeCmd(a *cliApp) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   cmdServe,
		Short: "Serve the codec API and iCalendar feed on " + config.BindAddr,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed(config.FlagPort) {
				a.settings.Port = port
			}
			if err := config.ValidatePort(a.settings.Port); err != nil {
				return &usageError{err}
			}

			srv := server.NewCodecServer(a.settings.Port, a.settings.Year, a.settings.Locale, a.catalog)
			if a.clock != nil {
				srv.Clock = a.clock
			}
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Version needs neither settings nor logging.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
