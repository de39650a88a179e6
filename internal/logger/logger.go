// Package logger holds the process wide zap logger used by the commands.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a no-op logger until Init is called
var Log = zap.NewNop()

// Init builds the global logger, human readable with debug lines when debug is set
func Init(debug bool) error {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
	}

	log, err := config.Build()
	if err != nil {
		return err
	}
	Log = log

	return nil
}

// Sync flushes buffered entries, errors on terminals are ignored
func Sync() {
	_ = Log.Sync()
}
