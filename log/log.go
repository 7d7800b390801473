// Package log implements the leveled, structured logger the consensus
// engine and the node binary write through instead of the standard
// library's log package. The store and the pool do not log.
package log

import (
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a logging severity, ordered from most to least verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trce"
	case LevelDebug:
		return "dbug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "eror"
	case LevelCrit:
		return "crit"
	default:
		return "unkn"
	}
}

// Record is one emitted log line: a timestamp, level, message and an
// ordered list of key/value context pairs (the caller's own plus any
// inherited from Logger.New).
type Record struct {
	Time    time.Time
	Level   Level
	Msg     string
	Ctx     []interface{}
	Call    stack.Call
}

// Handler consumes a formatted Record. Implementations are responsible for
// their own formatting and output destination.
type Handler interface {
	Log(r *Record) error
}

// Logger emits leveled records carrying a fixed context established by New.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx     []interface{}
	handler func() Handler
}

// root is the process-wide default logger and handler, swappable via
// SetDefault.
var (
	rootMu      sync.RWMutex
	rootHandler Handler = NewTerminalHandler(os.Stderr)
)

// SetDefault replaces the handler every Logger obtained from Root (and
// every Logger derived from it via New) writes through.
func SetDefault(h Handler) {
	rootMu.Lock()
	defer rootMu.Unlock()
	rootHandler = h
}

func currentHandler() Handler {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return rootHandler
}

// Root returns the process-wide root logger.
func Root() Logger {
	return &logger{handler: currentHandler}
}

func (l *logger) New(ctx ...interface{}) Logger {
	combined := make([]interface{}, 0, len(l.ctx)+len(ctx))
	combined = append(combined, l.ctx...)
	combined = append(combined, ctx...)
	return &logger{ctx: combined, handler: l.handler}
}

func (l *logger) write(level Level, msg string, ctx []interface{}) {
	combined := make([]interface{}, 0, len(l.ctx)+len(ctx))
	combined = append(combined, l.ctx...)
	combined = append(combined, ctx...)
	record := &Record{
		Time:  time.Now(),
		Level: level,
		Msg:   msg,
		Ctx:   combined,
		Call:  stack.Caller(2),
	}
	_ = l.handler().Log(record)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(LevelCrit, msg, ctx)
	os.Exit(1)
}

// New returns a child of Root carrying ctx as its fixed context, the
// common entry point for package-scoped loggers (log.New("pkg", "consensus")).
func New(ctx ...interface{}) Logger {
	return Root().New(ctx...)
}

func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root().Crit(msg, ctx...) }
