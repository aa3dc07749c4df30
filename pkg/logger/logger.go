package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options описывает параметры логгера.
type Options struct {
	// Level - уровень логирования ("debug", "info", "warn"...). По умолчанию "info".
	Level string
	// Format - "json" для продакшена и сбора логов, "text" для удобной разработки.
	Format string
	// Output - куда писать логи. По умолчанию stdout.
	Output io.Writer
}

// New создает новый экземпляр логгера.
// Глобального логгера нет: каждый компонент получает логгер через конструктор.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(opts.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stdout)
	}
	return log
}

// FromEnv собирает логгер из переменных окружения LOG_LEVEL и LOG_FORMAT.
func FromEnv() *logrus.Logger {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "info"
	}
	return New(Options{Level: level, Format: os.Getenv("LOG_FORMAT")})
}

// Discard возвращает логгер, который ничего не пишет. Используется в тестах.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
