package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	// ANSI color codes for terminal
	colorReset  = "\033[0m"
	colorCyan   = "\033[96m" // summary
	colorYellow = "\033[93m" // body
	colorGreen  = "\033[92m" // icon path
	colorRed    = "\033[91m" // connection state
)

// console echoes every popup to stdout when it is a terminal.
type console struct {
	out io.Writer
	fd  int
}

func newConsole() *console {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return &console{out: os.Stdout, fd: fd}
}

func (c *console) width() int {
	width, _, err := term.GetSize(c.fd)
	if err != nil || width <= 0 {
		return 80 // Default fallback
	}
	return width
}

func (c *console) echo(d Draft) {
	if c == nil {
		return
	}
	fmt.Fprint(c.out, formatConsoleDraft(d))
	fmt.Fprintln(c.out, strings.Repeat("─", c.width()))
}

func formatConsoleDraft(d Draft) string {
	var sb strings.Builder

	summaryColor := colorCyan
	if d.Summary == summaryDisconnected || d.Summary == summaryReconnected {
		summaryColor = colorRed
	}
	sb.WriteString(fmt.Sprintf("%s▶ %s%s\n", summaryColor, d.Summary, colorReset))

	for _, line := range strings.Split(d.Body, "\n") {
		if line == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s  🎤 %s%s\n", colorYellow, line, colorReset))
	}

	if d.Icon != "" {
		sb.WriteString(fmt.Sprintf("%s  📁 %s%s\n", colorGreen, d.Icon, colorReset))
	}

	return sb.String()
}
