package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a string to LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Logger is a minimal leveled logger writing to stdout.
type Logger struct {
	level LogLevel
	mu    sync.Mutex
}

var (
	globalLogger *Logger
	once         sync.Once
)

// InitLogger initializes the global logger from the viper config.
func InitLogger() {
	once.Do(func() {
		globalLogger = &Logger{level: ParseLogLevel(viper.GetString("logging.level"))}
	})
}

// GetLogger returns the global logger, creating a default one if needed.
func GetLogger() *Logger {
	if globalLogger == nil {
		InitLogger()
	}
	return globalLogger
}

func (l *Logger) log(level LogLevel, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	fmt.Fprintf(os.Stdout, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	l.mu.Unlock()
	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(msg string)                          { GetLogger().log(DEBUG, msg) }
func Debugf(format string, args ...interface{}) { GetLogger().log(DEBUG, fmt.Sprintf(format, args...)) }
func Info(msg string)                           { GetLogger().log(INFO, msg) }
func Infof(format string, args ...interface{})  { GetLogger().log(INFO, fmt.Sprintf(format, args...)) }
func Warn(msg string)                           { GetLogger().log(WARN, msg) }
func Warnf(format string, args ...interface{})  { GetLogger().log(WARN, fmt.Sprintf(format, args...)) }
func Error(msg string)                          { GetLogger().log(ERROR, msg) }
func Errorf(format string, args ...interface{}) { GetLogger().log(ERROR, fmt.Sprintf(format, args...)) }
func Fatal(msg string)                          { GetLogger().log(FATAL, msg) }
func Fatalf(format string, args ...interface{}) { GetLogger().log(FATAL, fmt.Sprintf(format, args...)) }
