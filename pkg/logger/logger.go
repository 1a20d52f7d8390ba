package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	cDbg  = color.New(color.FgHiBlack, color.Bold).SprintFunc()
	cInf  = color.New(color.FgCyan, color.Bold).SprintFunc()
	cWarn = color.New(color.FgYellow, color.Bold).SprintFunc()
	cErr  = color.New(color.FgRed, color.Bold).SprintFunc()
	cSucc = color.New(color.FgGreen, color.Bold).SprintFunc()
	cFatl = color.New(color.BgRed, color.FgWhite, color.Bold).SprintFunc()
	cTime = color.New(color.FgHiBlack).SprintFunc()
	cLink = color.New(color.FgHiBlue, color.Underline).SprintFunc()
	cRose = color.New(color.FgHiRed).SprintFunc()
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	level            = LevelInfo
)

func init() {
	log.SetFlags(0)
}

// SetOutput redirects all log lines to w. Tests use io.Discard.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out, errOut = w, w
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// ParseLevel accepts debug, info, warn and error. Anything else is info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

func timeStamp() string {
	return cTime(time.Now().Format("2006-01-02 15:04:05"))
}

func write(l Level, toErr bool, tag, format string, v []interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	w := out
	if toErr {
		w = errOut
	}
	fmt.Fprintf(w, "%s %s %s\n", timeStamp(), tag, fmt.Sprintf(format, v...))
}

func LogDebug(format string, v ...interface{}) {
	write(LevelDebug, false, cDbg("[DBG]"), format, v)
}

func LogInfo(format string, v ...interface{}) {
	write(LevelInfo, false, cInf("[INFO]"), format, v)
}

func LogSuccess(format string, v ...interface{}) {
	write(LevelInfo, false, cSucc("[OK]"), format, v)
}

func LogWarn(format string, v ...interface{}) {
	write(LevelWarn, false, cWarn("[WARN]"), format, v)
}

func LogError(format string, v ...interface{}) {
	write(LevelError, true, cErr("[ERR]"), format, v)
}

func LogFatal(format string, v ...interface{}) {
	write(LevelError, true, cFatl("[FATAL]"), format, v)
	os.Exit(1)
}

// LogRequest prints one access-log line. The middleware formats the fields.
func LogRequest(line string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s\n", timeStamp(), line)
}

func LogServerStart(port int, baseURL string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   %s  %s\n", cRose("💌 GLOW is live"), cTime("thiệp đang chờ khách..."))
	fmt.Fprintf(out, "   %s  %s\n", cInf("➜ Local:"), fmt.Sprintf("http://localhost:%d", port))
	fmt.Fprintf(out, "   %s  %s\n", cInf("➜ Public:"), cLink(baseURL))
	fmt.Fprintln(out)
}
