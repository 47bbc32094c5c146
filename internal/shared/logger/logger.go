package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level: DEBUG, INFO, WARN, ERROR
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ErrObj описывает ошибку в записи лога
type ErrObj struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Entry: одна структурированная запись лога
type Entry struct {
	Action     string         // имя события, например shift_clocked_in
	Message    string         // человекочитаемое описание
	RequestID  string         // correlation id
	ShiftID    string         // если применимо
	Error      *ErrObj        // только для WARN/ERROR
	Additional map[string]any // дополнительные поля
}

// Logger пишет JSON-записи через zerolog: INFO/DEBUG/WARN в out, ERROR в err
type Logger struct {
	service  string
	hostname string
	out      zerolog.Logger
	err      zerolog.Logger

	closers []io.Closer
}

// Options: параметры создания логгера
type Options struct {
	Level  string
	Pretty bool
	// Dir: если не пусто, логи дублируются в info.log и error.log
	Dir string
}

// NewLogger создает логгер только в stdout/stderr (для prod)
func NewLogger(service string) *Logger {
	pretty := strings.ToLower(os.Getenv("LOG_PRETTY")) == "true"
	l, _ := NewLoggerWithOptions(service, Options{Level: os.Getenv("LOG_LEVEL"), Pretty: pretty})
	return l
}

// NewLoggerWithOptions поддерживает уровень, pretty-вывод и файлы в dev окружении.
func NewLoggerWithOptions(service string, opts Options) (*Logger, error) {
	var outWriter io.Writer = os.Stdout
	var errWriter io.Writer = os.Stderr
	var closers []io.Closer

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
		infoF, err := os.OpenFile(filepath.Join(opts.Dir, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open info log: %w", err)
		}
		errF, err := os.OpenFile(filepath.Join(opts.Dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			_ = infoF.Close()
			return nil, fmt.Errorf("open error log: %w", err)
		}
		closers = append(closers, infoF, errF)

		if opts.Pretty {
			outWriter = io.MultiWriter(console(os.Stdout), infoF)
			errWriter = io.MultiWriter(console(os.Stderr), errF)
		} else {
			outWriter = io.MultiWriter(os.Stdout, infoF)
			errWriter = io.MultiWriter(os.Stderr, errF)
		}
	} else if opts.Pretty {
		outWriter = console(os.Stdout)
		errWriter = console(os.Stderr)
	}

	l := newLogger(service, ParseLevel(opts.Level), outWriter, errWriter)
	l.closers = closers
	return l, nil
}

// NewWithWriter пишет все уровни в один writer (удобно в тестах)
func NewWithWriter(service string, level Level, w io.Writer) *Logger {
	return newLogger(service, level, w, w)
}

// Nop возвращает логгер, который ничего не пишет
func Nop() *Logger {
	return &Logger{out: zerolog.Nop(), err: zerolog.Nop()}
}

func newLogger(service string, min Level, outWriter, errWriter io.Writer) *Logger {
	h, _ := os.Hostname()
	lvl := min.zerolog()
	return &Logger{
		service:  service,
		hostname: h,
		out:      zerolog.New(outWriter).Level(lvl),
		err:      zerolog.New(errWriter).Level(lvl),
	}
}

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func (l *Logger) Close() {
	for _, c := range l.closers {
		_ = c.Close()
	}
	l.closers = nil
}

func (l *Logger) Debug(e Entry) { l.log(LevelDebug, e, nil) }
func (l *Logger) Info(e Entry)  { l.log(LevelInfo, e, nil) }
func (l *Logger) Warn(e Entry)  { l.log(LevelWarn, e, nil) }
func (l *Logger) Error(e Entry) { l.log(LevelError, e, nil) }
func (l *Logger) Fatal(e Entry) {
	if e.Error == nil {
		e.Error = &ErrObj{Msg: e.Message, Stack: string(debug.Stack())}
	} else if e.Error.Stack == "" {
		e.Error.Stack = string(debug.Stack())
	}
	l.log(LevelError, e, nil)
	os.Exit(1)
}

// WithFields возвращает логгер, который добавляет base в Additional каждой записи.
func (l *Logger) WithFields(base map[string]any) *ContextLogger {
	return &ContextLogger{parent: l, base: base}
}

// WithContext привязывает request_id и shift_id.
func (l *Logger) WithContext(requestID, shiftID string) *ContextLogger {
	base := map[string]any{}
	if requestID != "" {
		base["request_id"] = requestID
	}
	if shiftID != "" {
		base["shift_id"] = shiftID
	}
	return &ContextLogger{parent: l, base: base}
}

type ContextLogger struct {
	parent *Logger
	base   map[string]any
}

func (c *ContextLogger) Debug(e Entry) { c.parent.log(LevelDebug, e, c.base) }
func (c *ContextLogger) Info(e Entry)  { c.parent.log(LevelInfo, e, c.base) }
func (c *ContextLogger) Warn(e Entry)  { c.parent.log(LevelWarn, e, c.base) }
func (c *ContextLogger) Error(e Entry) { c.parent.log(LevelError, e, c.base) }

func (l *Logger) log(level Level, e Entry, base map[string]any) {
	zl := l.out
	if level == LevelError {
		zl = l.err
	}

	ev := zl.WithLevel(level.zerolog())
	if ev == nil {
		return
	}

	if e.RequestID == "" {
		e.RequestID = toString(base["request_id"])
	}
	if e.ShiftID == "" {
		e.ShiftID = toString(base["shift_id"])
	}

	ev = ev.
		Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("service", l.service).
		Str("action", e.Action).
		Str("hostname", l.hostname)
	if e.RequestID != "" {
		ev = ev.Str("request_id", e.RequestID)
	}
	if e.ShiftID != "" {
		ev = ev.Str("shift_id", e.ShiftID)
	}
	if e.Error != nil {
		ev = ev.Interface("error", e.Error)
	}

	additional := make(map[string]any, len(e.Additional)+len(base)+1)
	for k, v := range base {
		switch k {
		case "request_id", "shift_id":
			continue
		default:
			additional[k] = v
		}
	}
	for k, v := range e.Additional {
		additional[k] = v
	}
	if _, ok := additional["caller"]; !ok {
		if pc, file, line, ok := runtime.Caller(2); ok {
			additional["caller"] = fmt.Sprintf("%s:%d (%s)", file, line, funcName(runtime.FuncForPC(pc)))
		}
	}
	ev.Interface("additional", additional).Msg(e.Message)
}

func funcName(fn *runtime.Func) string {
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
