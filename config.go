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

type Config struct {
	bind          string
	port          int
	prefix        string
	profile       bool
	sweepInterval time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool

	categoryTime   time.Duration
	questionTime   time.Duration
	lieTime        time.Duration
	voteTime       time.Duration
	scoreboardTime time.Duration
	settleDelay    time.Duration
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval: %s", c.sweepInterval)
	}
	for _, d := range []time.Duration{
		c.categoryTime, c.questionTime, c.lieTime,
		c.voteTime, c.scoreboardTime, c.settleDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("game timers must be positive, got %s", d)
		}
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FIBBER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "fibber",
		Short:         "A server-authoritative bluffing trivia game for one host display and 2-8 players.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FIBBER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FIBBER_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FIBBER_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FIBBER_PROFILE)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 1*time.Minute, "how often fully-disconnected rooms are reaped (env: FIBBER_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FIBBER_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FIBBER_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FIBBER_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FIBBER_VERSION)")

	fs.DurationVar(&cfg.categoryTime, "category-time", 15*time.Second, "deadline for category voting (env: FIBBER_CATEGORY_TIME)")
	fs.DurationVar(&cfg.questionTime, "question-time", 8*time.Second, "dwell time showing the question before lies open (env: FIBBER_QUESTION_TIME)")
	fs.DurationVar(&cfg.lieTime, "lie-time", 45*time.Second, "deadline for lie submission (env: FIBBER_LIE_TIME)")
	fs.DurationVar(&cfg.voteTime, "vote-time", 30*time.Second, "deadline for answer voting (env: FIBBER_VOTE_TIME)")
	fs.DurationVar(&cfg.scoreboardTime, "scoreboard-time", 8*time.Second, "dwell time on the scoreboard (env: FIBBER_SCOREBOARD_TIME)")
	fs.DurationVar(&cfg.settleDelay, "settle-delay", 2*time.Second, "grace delay before an early phase transition (env: FIBBER_SETTLE_DELAY)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("fibber v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
