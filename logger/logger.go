package logger

import (
	"os"

	"github.com/LOCKbusiness/transaction-checker-sub000/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
)

func init() {
	sugar = createLogger(config.LoggerConfig{Level: "INFO", Console: true}).Sugar()

	config.GlobalConfigCallback.AddCallback(func(cfg config.GlobalConfig) {
		sugar = createLogger(cfg.LoggerConfig()).Sugar()
	})
}

func createLogger(cfg config.LoggerConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var cores []zapcore.Core
	if cfg.Console {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}
	if len(cfg.File) > 0 {
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(file),
				level,
			))
		}
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func Debug(msg string, args ...interface{}) {
	sugar.Debugf(msg, args...)
}

func Info(msg string, args ...interface{}) {
	sugar.Infof(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	sugar.Warnf(msg, args...)
}

func Error(msg string, args ...interface{}) {
	sugar.Errorf(msg, args...)
}

func Fatal(msg string, args ...interface{}) {
	sugar.Fatalf(msg, args...)
}

func Sync() error {
	return sugar.Sync()
}
