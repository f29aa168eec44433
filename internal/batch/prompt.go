package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Decision is the operator's answer after an interrupted item.
type Decision int

const (
	Retry Decision = iota
	Abort
)

func (d Decision) String() string {
	if d == Abort {
		return "abort"
	}
	return "retry"
}

// Prompter asks whether to retry an interrupted item.
type Prompter interface {
	RetryOrAbort(ctx context.Context, item string) (Decision, error)
}

// LinePrompter asks on Out and reads one line from In. An empty line
// retries; "q", "quit", "abort" or end of input aborts.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (p *LinePrompter) RetryOrAbort(ctx context.Context, item string) (Decision, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "Interrupted while solving %s. Press Enter to attempt again, or q to quit: ", item)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return Abort, ctx.Err()
	case a := <-ch:
		line := strings.ToLower(strings.TrimSpace(a.line))
		if a.err != nil && line == "" {
			if a.err == io.EOF {
				return Abort, nil
			}
			return Abort, fmt.Errorf("read answer: %w", a.err)
		}
		switch line {
		case "q", "quit", "abort":
			return Abort, nil
		default:
			return Retry, nil
		}
	}
}

// FixedPrompter replays decisions in order and aborts once they run out.
type FixedPrompter struct {
	Decisions []Decision
	Asked     []string
}

func (p *FixedPrompter) RetryOrAbort(_ context.Context, item string) (Decision, error) {
	p.Asked = append(p.Asked, item)
	if len(p.Decisions) == 0 {
		return Abort, nil
	}
	d := p.Decisions[0]
	p.Decisions = p.Decisions[1:]
	return d, nil
}
