package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/client"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/render"
)

const (
	healthPollInterval = 30 * time.Second

	troubleshooting = "\nTroubleshooting:\n" +
		"1. Make sure the trading bot backend is running\n" +
		"2. Run `tradechat health` to check the connection\n" +
		"3. Run `tradechat probe` to test which payload format /query accepts\n" +
		"4. Check the chat service logs for backend error details"
)

func newChatCmd(opts *options) *cobra.Command {
	var (
		newSession bool
		noProgress bool
		useStream  bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the trading assistant",
		Long:  "Send a single message, or start an interactive session when no message is given. In a session, /history, /clear, /new and /quit are available.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := client.NewSessionFile(opts.sessionFile)
			sessionID, err := sessions.Load()
			if newSession {
				sessionID, err = sessions.Reset()
			}
			if err != nil {
				return err
			}

			s := &chatSession{
				client:     opts.client(),
				sessions:   sessions,
				sessionID:  sessionID,
				out:        cmd.OutOrStdout(),
				progress:   cmd.ErrOrStderr(),
				noProgress: noProgress,
			}
			if useStream {
				if err := s.dial(cmd.Context()); err != nil {
					return err
				}
				// /new replaces the stream
				defer func() { s.stream.Close() }()
			}

			if len(args) > 0 {
				return s.send(cmd.Context(), strings.Join(args, " "))
			}

			src := client.NewLineSource(cmd.InOrStdin(), func() {
				fmt.Fprintf(s.out, "[%s] > ", s.status())
			})
			return s.run(cmd.Context(), src)
		},
	}

	cmd.Flags().BoolVar(&newSession, "new", false, "start a new session")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the loading indicator")
	cmd.Flags().BoolVar(&useStream, "ws", false, "chat over the websocket stream instead of HTTP requests")
	return cmd
}

type chatSession struct {
	client     *client.Client
	stream     *client.Stream // replaces the HTTP calls when set
	sessions   *client.SessionFile
	sessionID  string
	out        io.Writer
	progress   io.Writer
	noProgress bool

	backend atomic.Value
}

func (s *chatSession) dial(ctx context.Context) error {
	stream, err := s.client.Dial(ctx, s.sessionID)
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

func (s *chatSession) ask(ctx context.Context, message string) (*domain.BotResponse, error) {
	if s.stream != nil {
		return s.stream.Chat(ctx, message)
	}
	return s.client.Chat(ctx, s.sessionID, message)
}

func (s *chatSession) history(ctx context.Context) ([]domain.Message, error) {
	if s.stream != nil {
		return s.stream.History(ctx)
	}
	return s.client.History(ctx, s.sessionID)
}

func (s *chatSession) clear(ctx context.Context) error {
	if s.stream != nil {
		return s.stream.Clear(ctx)
	}
	return s.client.Clear(ctx, s.sessionID)
}

func (s *chatSession) status() string {
	if s.stream != nil {
		return s.stream.Status()
	}
	if v, ok := s.backend.Load().(string); ok {
		return v
	}
	return "checking"
}

func (s *chatSession) checkHealth(ctx context.Context) {
	report, err := s.client.Health(ctx)
	if err != nil || !report.Healthy() {
		s.backend.Store("offline")
		return
	}
	s.backend.Store("online")
}

func (s *chatSession) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

// run reads messages from src until it is exhausted or /quit
func (s *chatSession) run(ctx context.Context, src client.InputSource) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the stream pushes status changes itself
	if s.stream == nil {
		s.checkHealth(ctx)
		go s.watchHealth(ctx)
	}

	fmt.Fprintf(s.out, "Session %s\n", s.sessionID)
	if err := s.printHistory(ctx); err != nil {
		fmt.Fprintf(s.out, "Failed to load history: %v\n", err)
	}

	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/history":
			if err := s.printHistory(ctx); err != nil {
				fmt.Fprintf(s.out, "Failed to load history: %v\n", err)
			}
		case "/clear":
			if err := s.clear(ctx); err != nil {
				fmt.Fprintf(s.out, "Failed to clear history: %v\n", err)
				continue
			}
			fmt.Fprintln(s.out, "Chat history cleared")
		case "/new":
			id, err := s.sessions.Reset()
			if err != nil {
				return err
			}
			s.sessionID = id
			if s.stream != nil {
				s.stream.Close()
				if err := s.dial(ctx); err != nil {
					return err
				}
			}
			fmt.Fprintf(s.out, "Session %s\n", s.sessionID)
		default:
			// errors are shown inline; the session continues
			_ = s.send(ctx, line)
		}
	}
}

func (s *chatSession) printHistory(ctx context.Context) error {
	msgs, err := s.history(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		render.MessageText(s.out, m)
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *chatSession) send(ctx context.Context, message string) error {
	stop := s.startProgress()
	resp, err := s.ask(ctx, message)
	stop()

	if err != nil {
		fmt.Fprintln(s.out, errorText(err))
		return err
	}

	render.MessageText(s.out, domain.Message{
		Role:       domain.RoleAssistant,
		Content:    resp.Answer,
		Timestamp:  time.Now(),
		Context:    resp.Context,
		MarketData: resp.MarketData,
		GraphData:  resp.GraphData,
	})
	fmt.Fprintln(s.out)
	return nil
}

// startProgress draws the loading indicator until the returned func is called
func (s *chatSession) startProgress() func() {
	if s.noProgress {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(render.ProgressTick)
		defer ticker.Stop()

		progress := 0
		for {
			fmt.Fprintf(s.progress, "\r%s", render.LoadingText(progress))
			select {
			case <-done:
				fmt.Fprintf(s.progress, "\r%s\r", strings.Repeat(" ", len(render.LoadingText(progress))+8))
				return
			case <-ticker.C:
				progress = render.NextProgress(progress)
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		details := apiErr.Message
		if d, ok := apiErr.Details.(string); ok && d != "" {
			details = d
		}
		prefix := "Error:"
		if apiErr.Timeout {
			prefix = "Timed out:"
		}
		return fmt.Sprintf("Sorry, I encountered an error. %s %s\n%s", prefix, details, troubleshooting)
	}
	return fmt.Sprintf("Sorry, I encountered an error. %v\n%s", err, troubleshooting)
}
