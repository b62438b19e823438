package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgWhite),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel accepts the level names case-insensitively; "warning" is an alias of "warn".
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		name = "WARN"
	}
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Set is called by the command line parser.
func (l *Level) Set(value string) error {
	level, err := ParseLevel(value)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Logger writes leveled, colored lines to a console. Lines below the configured level
// are discarded. It is safe for concurrent use.
type Logger struct {
	out   io.Writer
	level Level
	lock  sync.Mutex
}

func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level}
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) Debugf(message string, args ...interface{}) { l.log(LevelDebug, message, args...) }
func (l *Logger) Infof(message string, args ...interface{})  { l.log(LevelInfo, message, args...) }
func (l *Logger) Warnf(message string, args ...interface{})  { l.log(LevelWarn, message, args...) }
func (l *Logger) Errorf(message string, args ...interface{}) { l.log(LevelError, message, args...) }

// Printf logs at debug level, so that a Logger can be used wherever a plain
// Printf-style debug logger is expected.
func (l *Logger) Printf(message string, args ...interface{}) { l.log(LevelDebug, message, args...) }

func (l *Logger) log(level Level, message string, args ...interface{}) {
	if l == nil || !l.Enabled(level) {
		return
	}
	line := fmt.Sprintf(message, args...)
	l.lock.Lock()
	defer l.lock.Unlock()
	_, _ = levelColors[level].Fprintf(l.out, "%s %-5s %s\n", time.Now().Format(timestampFormat), level, line)
}
