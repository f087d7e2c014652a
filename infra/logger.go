package infra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger 初始化全局 zerolog。
// 开发环境输出彩色 console，ENV=production 时输出 JSON；
// 级别由 LOG_LEVEL 控制，默认 info。
func InitLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLogLevel(os.Getenv("LOG_LEVEL")))

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	var out zerolog.Logger
	if env == "production" {
		out = zerolog.New(os.Stdout)
	} else {
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	log.Logger = out.With().
		Timestamp().
		Str("service", "mogutou-backend").
		Str("environment", env).
		Str("hostname", hostname).
		Logger()
}

func parseLogLevel(levelStr string) zerolog.Level {
	if levelStr == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
