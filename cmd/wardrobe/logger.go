package main

import (
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger tees a console core with a rotated JSON file core.
// The returned writer is the rotated file, shared with the slog event hooks.
func newLogger(dev bool, path string) (*zap.Logger, io.WriteCloser) {
	level := zapcore.InfoLevel
	consoleCfg := zap.NewProductionEncoderConfig()
	if dev {
		level = zapcore.DebugLevel
		consoleCfg = zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level),
	)
	return zap.New(core, zap.AddCaller()), file
}

// newEventLogger writes hook events as JSON into w.
func newEventLogger(dev bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if dev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).With("component", "wardrobe")
}
