// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Options mirrors the log section of the config file.
type Options struct {
	Level  string
	Format string // text or json
	File   string
}

// PlainFormatter prints "LEVEL timestamp message key=value ...".
type PlainFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

func NewPlainFormatter() *PlainFormatter {
	return &PlainFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN ", "INFO ", "DEBUG", "TRACE"},
	}
}

func (f *PlainFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", f.LevelDesc[entry.Level], entry.Time.Format(f.TimestampFormat), entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func sortedKeys(data log.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Init applies opts to the standard logger. Output goes to stderr, mirrored to
// the log file if any; stdout stays free for command output such as exports.
// The returned closer points the logger back at stderr and releases the log file.
func Init(opts Options) (io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		log.SetFormatter(NewPlainFormatter())
	case "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(opts.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return logFile{f}, nil
}

type logFile struct{ f *os.File }

func (l logFile) Close() error {
	log.SetOutput(os.Stderr)
	return l.f.Close()
}
