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
	bind           string
	chatHistory    int
	maxChatLength  int
	maxNameLength  int
	pongTimeout    time.Duration
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	strictJoin     bool
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.chatHistory < 0 {
		return fmt.Errorf("invalid chat history (must be 0 or greater): %d", c.chatHistory)
	}
	if c.maxChatLength < 1 {
		return fmt.Errorf("invalid max chat length (must be 1 or greater): %d", c.maxChatLength)
	}
	if c.maxNameLength < 1 {
		return fmt.Errorf("invalid max name length (must be 1 or greater): %d", c.maxNameLength)
	}
	if c.pongTimeout < time.Second {
		return fmt.Errorf("invalid pong timeout (must be at least 1s): %s", c.pongTimeout)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must be 0 or greater): %s", c.sessionTimeout)
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
	v.SetEnvPrefix("RPSBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "rpsbox",
		Short:         "Two-player rock, paper, scissors rooms over websockets.",
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

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: RPSBOX_BIND)")
	fs.IntVar(&cfg.chatHistory, "chat-history", 100, "chat messages kept per room, 0 for unlimited (env: RPSBOX_CHAT_HISTORY)")
	fs.IntVar(&cfg.maxChatLength, "max-chat-length", 500, "longer chat messages are truncated to this many characters (env: RPSBOX_MAX_CHAT_LENGTH)")
	fs.IntVar(&cfg.maxNameLength, "max-name-length", 32, "longest accepted player name, in characters (env: RPSBOX_MAX_NAME_LENGTH)")
	fs.DurationVar(&cfg.pongTimeout, "pong-timeout", 60*time.Second, "time before unresponsive connections are dropped (env: RPSBOX_PONG_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: RPSBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: RPSBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: RPSBOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 0, "time before idle rooms are closed, 0 to never close them (env: RPSBOX_SESSION_TIMEOUT)")
	fs.BoolVar(&cfg.strictJoin, "strict-join", false, "reject joins to room codes that were not created first (env: RPSBOX_STRICT_JOIN)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: RPSBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: RPSBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: RPSBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: RPSBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("rpsbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
