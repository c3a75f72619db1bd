package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FranksOps/newslens/internal/source"
)

// prompter collects the topic and article count interactively.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) askTopic() (string, error) {
	for {
		fmt.Fprint(p.out, "Enter a topic of interest: ")
		line, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("read topic: %w", err)
		}
		if topic := strings.TrimSpace(line); topic != "" {
			return topic, nil
		}
		fmt.Fprintln(p.out, "Please enter a topic.")
	}
}

// askCount re-prompts until the answer is empty (def) or a plain integer
// within range.
func (p *prompter) askCount(def int) (int, error) {
	for {
		fmt.Fprintf(p.out, "Enter the number of articles to fetch (default is %d, max is %d): ", def, source.MaxCount)
		line, err := p.readLine()
		if err != nil {
			return 0, fmt.Errorf("read count: %w", err)
		}
		if line == "" {
			return def, nil
		}
		if n, ok := parseCount(line); ok {
			return n, nil
		}
		fmt.Fprintf(p.out, "Please enter a valid number between %d and %d.\n", source.MinCount, source.MaxCount)
	}
}

// parseCount accepts only ASCII digits, so "+5", " 5" and "5.0" are invalid.
func parseCount(s string) (int, bool) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < source.MinCount || n > source.MaxCount {
		return 0, false
	}
	return n, true
}
