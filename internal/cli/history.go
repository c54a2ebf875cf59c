package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/render"
)

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the current session's messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := opts.session()
			if err != nil {
				return err
			}

			msgs, err := opts.client().History(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != outputText {
				return printStructured(out, opts.output, msgs)
			}
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages yet")
				return nil
			}
			for _, m := range msgs {
				render.MessageText(out, m)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the current session's history",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := opts.session()
			if err != nil {
				return err
			}

			if err := opts.client().Clear(cmd.Context(), sessionID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared")
			return nil
		},
	}
}
