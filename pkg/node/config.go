package node

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// DefaultLogLevel is the level diagnostics are emitted at unless overridden.
const DefaultLogLevel = "info"

// Config holds the streams a node talks over and its diagnostics settings.
// Diagnostics never go to Out.
type Config struct {
	// In carries one request per line.
	In io.Reader

	// Out receives one reply per line.
	Out io.Writer

	// Err receives the diagnostics.
	Err io.Writer

	// LogLevel is one of debug, info, warn, error, fatal, panic.
	LogLevel string

	logger *logrus.Logger
}

// NewDefaultConfig returns a config bound to the process standard streams.
func NewDefaultConfig() *Config {
	return &Config{
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
		LogLevel: DefaultLogLevel,
	}
}

// NewTestConfig returns a config reading from in and writing to out, with
// diagnostics routed to t.Log so they only show for failed tests.
func NewTestConfig(t testing.TB, in io.Reader, out io.Writer) *Config {
	config := NewDefaultConfig()
	config.In = in
	config.Out = out
	config.LogLevel = "debug"
	config.logger = newTestLogger(t)
	return config
}

// Logger returns a formatted logrus Entry, with prefix set to "node".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Out = c.Err
		if c.logger.Out == nil {
			c.logger.Out = os.Stderr
		}
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "node")
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

type testLoggerAdapter struct {
	t testing.TB
}

func (a *testLoggerAdapter) Write(d []byte) (int, error) {
	n := len(d)
	if n > 0 && d[n-1] == '\n' {
		d = d[:n-1]
	}
	a.t.Log(string(d))
	return n, nil
}

func newTestLogger(t testing.TB) *logrus.Logger {
	logger := logrus.New()
	logger.Out = &testLoggerAdapter{t: t}
	logger.Level = logrus.DebugLevel
	return logger
}
