// Package console renders the bot's operator output: glyph-prefixed lines,
// loop banners and dim explorer links, colored when the terminal supports it.
package console

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	dim    = "\x1b[2m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	blue   = "\x1b[34m"
	cyan   = "\x1b[36m"
)

// Color modes accepted by Stdout.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Logger writes operator-facing lines. Derived loggers share the underlying writer.
type Logger struct {
	out   *log.Logger
	color bool
	tag   string
}

// New creates a logger on w. Timestamps follow the stdlib log defaults.
func New(w io.Writer, color bool) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), color: color}
}

// Stdout creates a logger on standard output. In auto mode colors are on only for terminals.
func Stdout(mode string) *Logger {
	color := false
	switch strings.ToLower(mode) {
	case ColorAlways:
		color = true
	case ColorNever:
	default:
		fd := os.Stdout.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return New(colorable.NewColorableStdout(), color)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(io.Discard, false)
}

// With returns a logger whose lines carry tag, typically a short wallet address.
func (l *Logger) With(tag string) *Logger {
	return &Logger{out: l.out, color: l.color, tag: tag}
}

func (l *Logger) Info(format string, args ...any)  { l.line(green, "[✓] ", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.line(yellow, "[⚠] ", format, args...) }
func (l *Logger) Error(format string, args ...any) { l.line(red, "[✗] ", format, args...) }
func (l *Logger) Step(format string, args ...any)  { l.line(cyan, "[➤] ", format, args...) }

// Loop prints a section banner such as "===== STARTING LOOP #1 =====".
func (l *Logger) Loop(format string, args ...any) {
	l.line(blue, "===== ", format+" =====", args...)
}

// Link prints an indented, dimmed line, used for explorer URLs.
func (l *Logger) Link(format string, args ...any) {
	l.line(cyan+dim, "    ", format, args...)
}

// Banner prints the startup box.
func (l *Logger) Banner(title string) {
	width := 45
	pad := width - len([]rune(title))
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	body := strings.Repeat(" ", left) + title + strings.Repeat(" ", pad-left)
	lines := []string{
		"╔" + strings.Repeat("═", width) + "╗",
		"║" + body + "║",
		"╚" + strings.Repeat("═", width) + "╝",
	}
	for _, s := range lines {
		l.print(cyan+bold, s)
	}
}

func (l *Logger) line(color, glyph, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.tag != "" {
		msg = "[" + l.tag + "] " + msg
	}
	l.print(color, glyph+msg)
}

func (l *Logger) print(color, s string) {
	if l.color {
		s = color + s + reset
	}
	l.out.Print(s)
}
