package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// newLogger builds the CLI logger. Logs go to stderr so command output on
// stdout stays parseable.
func newLogger(level, format string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	if level == "" {
		level = defaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)

	switch format {
	case "", types.LogFormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case types.LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrLogFormatUnknown, format)
	}
	return l, nil
}
