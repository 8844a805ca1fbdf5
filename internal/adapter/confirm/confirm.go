// Package confirm shows the trade summary and collects the user's answer.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"prxwallet/internal/domain/model"
)

// Preapproved accepts every summary. It backs --yes and requests that
// already carry the user's confirmation.
type Preapproved struct{}

func (Preapproved) Confirm(context.Context, model.Summary) (bool, error) { return true, nil }

// Terminal prints the summary and reads a y/N answer.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Confirm(ctx context.Context, s model.Summary) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.out, Describe(s))
	fmt.Fprint(t.out, "Confirm? [y/N] ")

	answer := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			errc <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errc:
		if err == io.EOF {
			return false, nil
		}
		return false, err
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// Describe renders a summary the way the confirmation modal shows it.
func Describe(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", strings.ToUpper(string(s.Flow)))
	fmt.Fprintf(&b, "  amount:     %s %s\n", s.Amount, s.From)
	fmt.Fprintf(&b, "  equivalent: %s %s\n", s.Equivalent, s.To)
	if s.Receiver != "" {
		fmt.Fprintf(&b, "  receiver:   %s\n", s.Receiver)
	}
	return b.String()
}
