// Package logging builds the logr.Logger shared by the CLI's components.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Verbosity is the highest V-level that is printed. 0 keeps only Info.
	Verbosity int
	JSON      bool
	Out       io.Writer
}

// New returns a zap-backed logger writing to stderr unless opts.Out is set.
// Errors are always printed.
func New(opts Options) logr.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	var enc zapcore.Encoder
	if opts.JSON {
		encCfg = zap.NewProductionEncoderConfig()
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	verbosity := max(opts.Verbosity, 0)
	// zap levels are negative for logr V-levels: V(n) logs at -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return zapr.NewLogger(zap.New(core)).WithName("larose")
}

// IntoContext and FromContext carry the logger through cobra's command context.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
