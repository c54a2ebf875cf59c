package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/gateway"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the trading bot is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != outputText {
				if err := printStructured(out, opts.output, report); err != nil {
					return err
				}
				if !report.Healthy() {
					return fmt.Errorf("trading bot is unhealthy")
				}
				return nil
			}
			if !report.Healthy() {
				fmt.Fprintf(out, "Disconnected: %s\n", report.Error)
				return fmt.Errorf("trading bot is unhealthy")
			}

			fmt.Fprintln(out, "Connected")
			if report.Backend != nil {
				data, _ := json.MarshalIndent(report.Backend, "", "  ")
				fmt.Fprintf(out, "%s\n", data)
			}
			return nil
		},
	}
}

func newDebugCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Run the backend probe through the chat service (operator token required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := opts.client().Debug(cmd.Context())
			if err != nil {
				return err
			}
			return writeProbe(cmd.OutOrStdout(), opts.output, report)
		},
	}
}

func newProbeCmd(opts *options) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Test the trading bot backend directly with each known payload format",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gwCfg := gateway.Config{
				BaseURL:       cfg.Gateway.BaseURL,
				Timeout:       cfg.Gateway.Timeout,
				HealthTimeout: cfg.Gateway.HealthTimeout,
				ProbeTimeout:  cfg.Gateway.ProbeTimeout,
			}
			if baseURL != "" {
				gwCfg.BaseURL = baseURL
			}

			return writeProbe(cmd.OutOrStdout(), opts.output, gateway.New(gwCfg).Probe(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&baseURL, "backend", "", "backend URL (default from config or CHATBOT_API_URL)")
	return cmd
}

func newFlushCacheCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Drop all cached histories (operator token required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := opts.client().FlushCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cached histories\n", n)
			return nil
		},
	}
}

func writeProbe(out io.Writer, format string, report *gateway.ProbeReport) error {
	if format != outputText {
		return printStructured(out, format, report)
	}
	printProbe(out, report)
	return nil
}

func printProbe(out io.Writer, report *gateway.ProbeReport) {
	fmt.Fprintf(out, "Backend: %s\n\n", report.BackendURL)
	for _, r := range report.Results {
		fmt.Fprintf(out, "%-8s %s", strings.ToUpper(r.Status), r.Test)
		if r.Payload != "" {
			fmt.Fprintf(out, " %s", r.Payload)
		}
		if r.StatusCode != 0 {
			fmt.Fprintf(out, " (HTTP %d)", r.StatusCode)
		}
		fmt.Fprintln(out)
		if len(r.ResponseKeys) > 0 {
			fmt.Fprintf(out, "         keys: %s\n", strings.Join(r.ResponseKeys, ", "))
		}
		if r.Error != nil {
			fmt.Fprintf(out, "         error: %v\n", r.Error)
		}
	}
	fmt.Fprintf(out, "\n%s\n", report.Recommendation)
}
