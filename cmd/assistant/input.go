package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// lineInput is the REPL's input source: chzyer/readline when it can
// initialize, buffered stdin otherwise.
type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newLineInput builds a readline editor with persistent history stored
// as repl.history under stateDir. When readline cannot initialize (no
// tty, for example) it returns a stdin fallback along with the cause.
func newLineInput(stateDir string) (lineInput, error) {
	historyPath := ""
	if dir := strings.TrimSpace(stateDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			historyPath = filepath.Join(dir, "repl.history")
		}
	}

	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "you> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		return &stdinInput{reader: bufio.NewReader(os.Stdin), out: os.Stdout}, err
	}
	return &readlineInput{instance: instance}, nil
}

type readlineInput struct {
	instance *readline.Instance
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// stdinInput reads plain lines with no editing or history.
type stdinInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func (s *stdinInput) ReadLine(prompt string) (string, error) {
	if s.out != nil {
		fmt.Fprint(s.out, prompt)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *stdinInput) Close() error { return nil }
