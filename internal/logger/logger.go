package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var showDateTime bool
var defaultLogger *Logger
var logFile *os.File
var mu sync.Mutex

// DefaultLogPath is used when file output is requested without a path
const DefaultLogPath = "/tmp/refstats.log"

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	colour      bool
}

func init() {
	defaultLogger = NewLogger(INFO)
	showDateTime = false
}

func flags() int {
	if showDateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

// SetShowDateTime prefixes every line with the date and time
func SetShowDateTime(value bool) {
	mu.Lock()
	defer mu.Unlock()
	showDateTime = value
	defaultLogger.infoLogger.SetFlags(flags())
	defaultLogger.errorLogger.SetFlags(flags())
}

// SetLevel sets the minimum level written by the package level functions
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.level = level
}

// GetLevel returns the current minimum level
func GetLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger.level
}

// ParseLevel converts a level name such as "debug" or "WARN" to a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "INFORM":
		return INFORM, nil
	case "HIGHLIGHT":
		return HIGHLIGHT, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
// An empty path means DefaultLogPath
func SetLogOutput(outputType rune, path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if path == "" {
		path = DefaultLogPath
	}

	var infoWriter, errorWriter io.Writer
	colour := true

	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'e':
		// stderr only, stdout belongs to the stdio transport
		infoWriter = os.Stderr
		errorWriter = os.Stderr
	case 'f':
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		logFile = f
		infoWriter = f
		errorWriter = f
		colour = false
	case 'b':
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		logFile = f
		infoWriter = io.MultiWriter(os.Stdout, f)
		errorWriter = io.MultiWriter(os.Stderr, f)
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	defaultLogger.infoLogger = log.New(infoWriter, "", flags())
	defaultLogger.errorLogger = log.New(errorWriter, "", flags())
	defaultLogger.colour = colour
	return nil
}

// SetWriter sends all output to w without colour codes. Mostly for tests.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.infoLogger = log.New(w, "", flags())
	defaultLogger.errorLogger = log.New(w, "", flags())
	defaultLogger.colour = false
}

// Close releases the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", flags()),
		errorLogger: log.New(os.Stderr, "", flags()),
		level:       level,
		colour:      true,
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	var jsonObjects []string
	if len(v) > 0 {
		processedArgs, jsonStrings := processArgs(v...)
		jsonObjects = jsonStrings
		if len(processedArgs) > 0 {
			msg = fmt.Sprintf("%s %s", format, strings.Join(processedArgs, " "))
		}
	}

	colorCode, reset := "", ""
	if l.colour {
		colorCode, reset = level.color(), colorReset
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, colorCode, msg, reset))
	// complex arguments go on their own lines
	for _, jsonObj := range jsonObjects {
		out.Println(fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, colorCode, jsonObj, reset))
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
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

// processArgs processes arguments, converting non-primitives to JSON
// Returns a slice of string representations for primitive types and a slice of JSON strings for complex types
func processArgs(args ...any) ([]string, []string) {
	if len(args) == 0 {
		return nil, nil
	}

	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		if isPrimitive(arg) {
			switch v := arg.(type) {
			case float32:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case float64:
				primitives = append(primitives, fmt.Sprintf("%.2f", v))
			case string:
				primitives = append(primitives, v)
			case error:
				primitives = append(primitives, v.Error())
			case nil:
				primitives = append(primitives, "nil")
			default:
				primitives = append(primitives, fmt.Sprintf("%v", v))
			}
			continue
		}
		jsonBytes, err := json.MarshalIndent(arg, "", "  ")
		if err != nil {
			primitives = append(primitives, fmt.Sprintf("%v", arg))
			continue
		}
		primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
		jsonObjects = append(jsonObjects, string(jsonBytes))
	}
	return primitives, jsonObjects
}

// isPrimitive checks if a value is a primitive type
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error:
		return true
	default:
		return false
	}
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	defaultLogger.log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLogger.log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.log(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.log(ERROR, format, v...)
}

// Fatal logs at FATAL, closes any log file and exits with status 1
func Fatal(format string, v ...any) {
	defaultLogger.log(FATAL, format, v...)
	Close()
	os.Exit(1)
}
