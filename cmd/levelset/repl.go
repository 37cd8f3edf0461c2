package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/aescanero/dago-levelset/internal/plotter"
)

const (
	historyFile = ".levelset_history"
	prompt      = "f(x, y) = "
)

const replHelp = `Enter an expression in x and y to check it.
  :n <N>      also test whether the curve f(x, y) = N exists
  :n          stop testing a level
  :quit       exit
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func cmdRepl(_ []string) int {
	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer s.close()

	fmt.Printf("levelset %s. Type :help for commands.\n", Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	var level *float64
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":quit":
			return 0
		case line == ":help":
			fmt.Print(replHelp)
			continue
		case line == ":n":
			level = nil
			continue
		case strings.HasPrefix(line, ":n "):
			v, err := strconv.ParseFloat(strings.TrimSpace(line[3:]), 64)
			if err != nil {
				fmt.Fprintln(os.Stderr, red("invalid level"))
				continue
			}
			level = &v
			continue
		case strings.HasPrefix(line, ":"):
			fmt.Println("unknown command. Type :help for commands.")
			continue
		}

		ln.AppendHistory(line)
		fmt.Println(evalLine(s, line, level))
	}
}

// evalLine validates line, or draws it when a level is set
func evalLine(s *session, line string, level *float64) string {
	req := &plotter.Request{Mode: plotter.ModeValidate, Expression: line}
	if level != nil {
		req.Mode = plotter.ModeDraw
		req.Amplitude = level
	}

	res, err := s.plotter.Handle(context.Background(), req)
	if err != nil {
		return red(fmt.Sprintf("%s: %v", plotter.Kind(err), err))
	}

	out := green(res.Canonical)
	if len(res.Symbols) > 0 {
		out += "  uses " + strings.Join(res.Symbols, ", ")
	}
	if level != nil {
		if res.Absent {
			out += fmt.Sprintf("\n  no curve at N = %g", *level)
		} else {
			f := res.Frames[0]
			out += fmt.Sprintf("\n  N = %g: %d segments, %d points", *level, f.Segments, f.Points)
		}
	}
	return out
}
