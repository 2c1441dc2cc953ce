package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers groups the named component loggers handed to the layers.
type Loggers struct {
	Main    *zap.Logger
	HTTP    *zap.Logger
	Catalog *zap.Logger
	Profile *zap.Logger
	Order   *zap.Logger
	Events  *zap.Logger
}

// NewLogger builds a console logger writing to stdout and, when file is set, to file too.
func NewLogger(level, file string) *zap.Logger {
	atomicLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
		atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	outputs := []string{"stdout"}
	if file != "" {
		outputs = append(outputs, file)
	}

	cfg := zap.Config{
		Encoding:         "console",
		Level:            atomicLevel,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig,
	}

	built, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return built
}

func NewLoggers(root *zap.Logger) Loggers {
	return Loggers{
		Main:    root,
		HTTP:    root.Named("http"),
		Catalog: root.Named("catalog"),
		Profile: root.Named("profile"),
		Order:   root.Named("order"),
		Events:  root.Named("events"),
	}
}
