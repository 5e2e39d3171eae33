package logger

import (
	"os"

	"music_exam_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 全局日志，InitLogger 之前为 Nop，测试和工具代码可以直接使用
var Log = zap.NewNop()

// level 文件与控制台共用，热更新只改这里
var level = zap.NewAtomicLevelAt(zap.InfoLevel)

func InitLogger(cfg *config.Config) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	level.SetLevel(resolveLevel(cfg))

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), level),
	}
	if cfg.Log.File != "-" {
		file := cfg.Log.File
		if file == "" {
			file = "logs/app.log"
		}
		rotate := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    positive(cfg.Log.MaxSizeMB, 100),
			MaxBackups: positive(cfg.Log.MaxBackups, 5),
			MaxAge:     positive(cfg.Log.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotate), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).
		With(zap.String("service", "music-exam-backend"))
}

// SetLevel 配置热更新时调用；非法值忽略
func SetLevel(text string) {
	if text == "" {
		return
	}
	lvl, err := zapcore.ParseLevel(text)
	if err != nil {
		Log.Warn("Ignoring invalid log level", zap.String("level", text))
		return
	}
	if lvl != level.Level() {
		level.SetLevel(lvl)
		Log.Info("Log level changed", zap.Stringer("level", lvl))
	}
}

// resolveLevel log.level 优先，未配置时 debug 模式输出 debug 日志
func resolveLevel(cfg *config.Config) zapcore.Level {
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		return lvl
	}
	if cfg.Server.Mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
