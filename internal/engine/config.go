package engine

import (
	"time"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/watchdog"
)

// Config хранит параметры клиентского ядра
type Config struct {
	// StaleAfter - тишина потока, после которой запрашивается ресинк.
	StaleAfter time.Duration
	// FrameRate - частота тиков для TickerScheduler.
	FrameRate int
	Camera    camera.Config
	// Clock - источник времени. nil - time.Now.
	Clock func() time.Time
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		StaleAfter: watchdog.DefaultStaleAfter,
		FrameRate:  60,
		Camera:     camera.DefaultConfig(),
	}
}
