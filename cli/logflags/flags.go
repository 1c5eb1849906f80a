package logflags

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Flags struct {
	Level   string
	Path    string
	MaxSize int
}

func (f *Flags) SetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Level, "log-level", "warn", "logging level [debug,info,warn,error]")
	fs.StringVar(&f.Path, "log-file", "", "write JSON logs to this file, rotating it as it grows")
	fs.IntVar(&f.MaxSize, "log-maxsize", 100, "size in megabytes at which the log file is rotated")
}

// Open returns a logger writing to the log file if one was given and to
// stderr otherwise.
func (f *Flags) Open() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(f.Level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	if f.Path == "" {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)), nil
	}
	w := &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSize,
		MaxBackups: 3,
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
