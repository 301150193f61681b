package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PAIRS"

// Config holds every setting of the serve and play commands. Flags win over
// PAIRS_* environment variables, which win over defaults; .env files are
// loaded into the environment before any of this runs.
type Config struct {
	// shared
	logLevel    string
	logFile     string
	pretty      bool
	symbolsFile string
	dimension   int
	revertDelay time.Duration
	dailySalt   string

	// serve
	bind           string
	port           int
	sessionTimeout time.Duration
	jwtSecret      string
	resultsDB      string
	publicURL      string
	clientOrigin   string

	// play
	daily bool

	closeLog func() error // set when logs go to a file
}

// cards is the board size for the configured dimension.
func (c *Config) cards() int { return c.dimension * c.dimension }

func (c *Config) validate() error {
	if c.dimension < 2 {
		return fmt.Errorf("invalid dimension (must be at least 2): %d", c.dimension)
	}
	if c.cards()%2 != 0 {
		return fmt.Errorf("invalid dimension (board of %d cards cannot be paired): %d", c.cards(), c.dimension)
	}
	if c.revertDelay <= 0 {
		return errors.New("--revert-delay must be positive")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return errors.New("--session-timeout must not be negative")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pairs",
		Short:         "A memory matching game, served over HTTP or played in the terminal.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return setupLogging(cfg, cmd.Name() == "play")
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.logLevel, "log-level", "info", "zerolog level: trace, debug, info, warn, error (env: PAIRS_LOG_LEVEL)")
	pfs.StringVar(&cfg.logFile, "log-file", "", "write logs to this file instead of stderr (env: PAIRS_LOG_FILE)")
	pfs.BoolVar(&cfg.pretty, "pretty", false, "human-readable console logs (env: PAIRS_PRETTY)")
	pfs.StringVar(&cfg.symbolsFile, "symbols-file", "", "file with one card face per line; embedded emoji when empty (env: PAIRS_SYMBOLS_FILE)")
	pfs.IntVarP(&cfg.dimension, "dimension", "d", 4, "board side length; the board holds dimension² cards (env: PAIRS_DIMENSION)")
	pfs.DurationVar(&cfg.revertDelay, "revert-delay", time.Second, "how long a mismatched pair stays face up (env: PAIRS_REVERT_DELAY)")
	pfs.StringVar(&cfg.dailySalt, "daily-salt", "local_dev_salt", "salt for the daily board seed (env: PAIRS_DAILY_SALT)")

	serve := newServeCmd(cfg)
	play := newPlayCmd(cfg)
	cmd.AddCommand(serve, play)

	for _, fs := range []*pflag.FlagSet{pfs, serve.Flags(), play.Flags()} {
		bindFlags(v, fs)
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pairs v{{.Version}}\n")

	return cmd
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web game and its JSON/websocket API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PAIRS_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: PAIRS_PORT)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are dropped, 0 keeps them (env: PAIRS_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "HMAC secret for game session tokens (env: PAIRS_JWT_SECRET)")
	fs.StringVar(&cfg.resultsDB, "results-db", ":memory:", "SQLite path for finished-game results (env: PAIRS_RESULTS_DB)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally visible URL, used for the QR code and secure cookies (env: PAIRS_PUBLIC_URL)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "", "allowed CORS origin for a separately hosted client (env: PAIRS_CLIENT_ORIGIN)")
	return cmd
}

func newPlayCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&cfg.daily, "daily", false, "play today's shared board (env: PAIRS_DAILY)")
	return cmd
}

// bindFlags lets PAIRS_<FLAG> environment variables fill flags that were not
// set on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
