// Package cli implements the tradechat terminal client
package cli

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/client"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/logging"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server      string
	sessionFile string
	timeout     time.Duration
	logLevel    string
	configFile  string
	token       string
	output      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tradechat",
		Short: "Terminal client for the trading assistant chat service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = logging.New(cmd.ErrOrStderr(), opts.logLevel)
			if opts.configFile != "" {
				os.Setenv("CONFIG_PATH", opts.configFile)
			}
			if opts.sessionFile == "" {
				path, err := client.DefaultSessionPath()
				if err != nil {
					return err
				}
				opts.sessionFile = path
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("TRADECHAT_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "chat service URL (env TRADECHAT_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.sessionFile, "session-file", "", "session id file (default ~/.tradechat/session)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 4*time.Minute, "request timeout")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error, silent)")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "server config file, for probe and token")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TRADECHAT_TOKEN"), "operator token (env TRADECHAT_TOKEN)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format for history, health, debug and probe (text, json, yaml)")

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newClearCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newDebugCmd(opts))
	cmd.AddCommand(newFlushCacheCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))

	return cmd
}

func (o *options) client() *client.Client {
	c := client.New(o.server, o.timeout)
	if o.token != "" {
		c = c.WithToken(o.token)
	}
	return c
}

func (o *options) session() (string, error) {
	return client.NewSessionFile(o.sessionFile).Load()
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
