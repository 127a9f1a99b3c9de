// Package agent runs a chat session with Gemini experts able to read a valuation report.
package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Session is an interactive chat between the user and a facilitator expert.
type Session struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Render formats answers before printing, e.g. markdown for the terminal.
	Render func(string) string
}

// New creates a session reading the user from r and answering on w.
// The facilitator can ask every expert.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Session {
	return &Session{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: NewFacilitator(experts...),
		Render:      func(s string) string { return s },
	}
}

// Start opens a chat for every expert.
func (s *Session) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append(slices.Clip(s.Experts), s.Facilitator) {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("starting %s: %w", e.Name, err)
		}
	}
	return nil
}

const prompt = "assist> "

// Run is the read-eval-print loop. prompts are sent first, as if typed by the user.
// It returns on "bye" or at the end of the input.
func (s *Session) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if s.Facilitator.chat == nil {
		if err := s.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(s.w, "Ask anything about the valuation. Type 'bye' to exit.")
	for {
		fmt.Fprint(s.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(s.w, input)
		} else {
			line, err := s.r.ReadString('\n')
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				fmt.Fprintln(s.w)
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			input = strings.TrimSpace(line)
		}

		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		answer, err := s.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(s.w, s.Render(answer))
	}
}
