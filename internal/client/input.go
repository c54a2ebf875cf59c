package client

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// InputSource yields the user's next message. Next returns io.EOF when the
// source is exhausted. A speech recognizer can implement it as well as a
// terminal reader.
type InputSource interface {
	Next(ctx context.Context) (string, error)
}

// LineSource reads one message per line, skipping blank lines
type LineSource struct {
	scanner *bufio.Scanner
	prompt  func()
}

// NewLineSource reads from r. prompt, when set, runs before each read.
func NewLineSource(r io.Reader, prompt func()) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r), prompt: prompt}
}

// Next returns the next non-blank line, trimmed
func (s *LineSource) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if s.prompt != nil {
			s.prompt()
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		if line := strings.TrimSpace(s.scanner.Text()); line != "" {
			return line, nil
		}
	}
}
