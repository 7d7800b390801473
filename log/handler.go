package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

var levelColor = map[Level]*color.Color{
	LevelTrace: color.New(color.FgWhite),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
	LevelCrit:  color.New(color.FgRed, color.Bold),
}

// StreamHandler writes formatted records to out, one line per record. It
// is the base every other handler composes.
type StreamHandler struct {
	mu       sync.Mutex
	out      io.Writer
	useColor bool
}

// NewTerminalHandler wraps out for interactive display: color is enabled
// only when out is a real terminal (checked via go-isatty), and out is
// wrapped with go-colorable so ANSI sequences render correctly on every
// platform the node binary ships for.
func NewTerminalHandler(out *os.File) *StreamHandler {
	useColor := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	var w io.Writer = out
	if useColor {
		w = colorable.NewColorable(out)
	}
	return &StreamHandler{out: w, useColor: useColor}
}

// NewStreamHandler wraps out with no color and no terminal detection —
// the handler used for piping logs to files or other processes.
func NewStreamHandler(out io.Writer) *StreamHandler {
	return &StreamHandler{out: out}
}

// NewFileHandler returns a handler that rotates its output through
// lumberjack: maxSizeMB per file, maxBackups retained, maxAgeDays before
// deletion.
func NewFileHandler(path string, maxSizeMB, maxBackups, maxAgeDays int) *StreamHandler {
	return &StreamHandler{out: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}}
}

func (h *StreamHandler) Log(r *Record) error {
	line := formatRecord(r, h.useColor)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func formatRecord(r *Record, useColor bool) string {
	level := r.Level.String()
	if useColor {
		if c, ok := levelColor[r.Level]; ok {
			level = c.Sprint(level)
		}
	}
	line := fmt.Sprintf("%s[%s] %s", r.Time.Format("2006-01-02T15:04:05-0700"), level, r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", r.Ctx[i], r.Ctx[i+1])
	}
	if r.Call.Frame().Function != "" {
		line += fmt.Sprintf(" caller=%s:%d", r.Call.Frame().File, r.Call.Frame().Line)
	}
	return line + "\n"
}
