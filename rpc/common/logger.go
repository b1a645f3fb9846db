package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// houndLogger implements the ILogger interface. Lines look like
//
//	2026/10/15 12:00:00 hound WARN  [transport/ws] connection closed
//
// so logs of several tools writing to the same terminal stay apart.
type houndLogger struct {
	name  string
	level logger.LogLevel
}

func (l *houndLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *houndLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *houndLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *houndLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *houndLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *houndLogger) Panicf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.log("PANIC", "%s", message)
	panic(message)
}

func (l *houndLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	// Multi line messages (e.g. config dumps) are indented under their header
	message = strings.ReplaceAll(strings.TrimRight(message, "\n"), "\n", "\n\t")

	outputMu.Lock()
	defer outputMu.Unlock()
	output.Printf("hound %-5s [%s] %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	outputMu sync.Mutex
	// Logs go to stderr so command output on stdout stays machine readable
	output = log.New(os.Stderr, "", log.Ldate|log.Ltime)
)

// SetLogOutput redirects all package loggers to w
func SetLogOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = log.New(w, "", log.Ldate|log.Ltime)
}

// CreateLogger implements the dragonboat logger.Factory signature
func CreateLogger(pkgName string) logger.ILogger {
	return &houndLogger{
		name:  pkgName,
		level: logger.WARNING,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn", "":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.WARNING, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// LoggerNames lists every package logger of this module
var LoggerNames = []string{
	"rpc",
	"correlator",
	"transport/base",
	"transport/ws",
	"server",
}

var factoryOnce sync.Once

// InitLoggers installs the custom logger factory and sets the level of all
// package loggers. It may be called more than once; only the level changes.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	// Set as the global logger factory (dragonboat only accepts this once)
	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
