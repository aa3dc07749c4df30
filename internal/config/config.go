package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/engine"
	"bomberman-client/internal/network"
	"bomberman-client/internal/watchdog"
)

// Config - файл конфигурации клиента. Все секции необязательны:
// отсутствующие значения берутся из Default().
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Camera CameraConfig `yaml:"camera"`
	Sync   SyncConfig   `yaml:"sync"`
	Log    LogConfig    `yaml:"log"`
	Debug  DebugConfig  `yaml:"debug"`
	Trace  TraceConfig  `yaml:"trace"`
}

type ServerConfig struct {
	URL        string        `yaml:"url"`
	Codec      string        `yaml:"codec"`
	AckTimeout time.Duration `yaml:"ack_timeout"`
}

type AuthConfig struct {
	Token string `yaml:"token"`
}

type CameraConfig struct {
	CellSize float64 `yaml:"cell_size"`
	// ViewRadius - сколько клеток видно от центра в каждую сторону.
	ViewRadius   int     `yaml:"view_radius"`
	DeadZone     float64 `yaml:"dead_zone"`
	Gain         float64 `yaml:"gain"`
	SlowRadius   float64 `yaml:"slow_radius"`
	SnapDistance float64 `yaml:"snap_distance"`
}

type SyncConfig struct {
	StaleAfter time.Duration `yaml:"stale_after"`
	FrameRate  int           `yaml:"frame_rate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DebugConfig - адрес диагностического HTTP. Пустой адрес отключает его.
type DebugConfig struct {
	Addr string `yaml:"addr"`
}

// TraceConfig - каталог для записи трасс. Пустой каталог отключает запись.
type TraceConfig struct {
	Dir string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	cam := camera.DefaultConfig()
	return Config{
		Server: ServerConfig{
			URL:        "ws://localhost:3000/ws",
			Codec:      "json",
			AckTimeout: 5 * time.Second,
		},
		Camera: CameraConfig{
			CellSize:     cam.CellSize,
			ViewRadius:   7,
			DeadZone:     cam.DeadZone.X,
			Gain:         cam.Gain,
			SlowRadius:   cam.SlowRadius,
			SnapDistance: cam.SnapDistance,
		},
		Sync: SyncConfig{
			StaleAfter: watchdog.DefaultStaleAfter,
			FrameRate:  60,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load читает YAML поверх значений по умолчанию.
// Пустой путь означает "только значения по умолчанию".
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv переопределяет значения из окружения. lookup обычно os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup("BM_SERVER_URL"); ok && v != "" {
		c.Server.URL = v
	}
	if v, ok := lookup("BM_TOKEN"); ok {
		c.Auth.Token = v
	}
	if v, ok := lookup("BM_DEBUG_ADDR"); ok {
		c.Debug.Addr = v
	}
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Server.Validate())
	el.Add(c.Camera.Validate())
	el.Add(c.Sync.Validate())
	el.Add(c.Log.Validate())

	return el.Err()
}

func (c *ServerConfig) Validate() error {
	el := errors.NewErrorList()

	u, err := url.Parse(c.URL)
	if err != nil {
		el.Add(fmt.Errorf("server.url: %w", err))
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		el.Add(fmt.Errorf("server.url must use ws or wss scheme, got %q", u.Scheme))
	}

	if _, err := network.CodecByName(c.Codec); err != nil {
		el.Add(fmt.Errorf("server.codec: %w", err))
	}
	if c.AckTimeout <= 0 {
		el.Add(fmt.Errorf("server.ack_timeout must be positive"))
	}

	return el.Err()
}

func (c *CameraConfig) Validate() error {
	el := errors.NewErrorList()

	if c.CellSize <= 0 {
		el.Add(fmt.Errorf("camera.cell_size must be positive"))
	}
	if c.ViewRadius < 1 {
		el.Add(fmt.Errorf("camera.view_radius must be at least 1"))
	}
	if c.DeadZone < 0 {
		el.Add(fmt.Errorf("camera.dead_zone must not be negative"))
	}
	if c.Gain <= 0 {
		el.Add(fmt.Errorf("camera.gain must be positive"))
	}
	if c.SlowRadius < 0 || c.SnapDistance < 0 {
		el.Add(fmt.Errorf("camera.slow_radius and camera.snap_distance must not be negative"))
	}

	return el.Err()
}

func (c *SyncConfig) Validate() error {
	el := errors.NewErrorList()

	if c.StaleAfter <= 0 {
		el.Add(fmt.Errorf("sync.stale_after must be positive"))
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		el.Add(fmt.Errorf("sync.frame_rate must be in [1, 240], got %d", c.FrameRate))
	}

	return el.Err()
}

func (c *LogConfig) Validate() error {
	el := errors.NewErrorList()

	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		el.Add(fmt.Errorf("log.format must be text or json, got %q", c.Format))
	}

	return el.Err()
}

// Engine собирает конфиг клиентского ядра.
func (c Config) Engine() engine.Config {
	cfg := engine.NewConfig()
	cfg.StaleAfter = c.Sync.StaleAfter
	cfg.FrameRate = c.Sync.FrameRate
	cfg.Camera = camera.Config{
		CellSize:     c.Camera.CellSize,
		Viewport:     camera.ViewportFor(c.Camera.CellSize, c.Camera.ViewRadius),
		DeadZone:     domain.Vec2{X: c.Camera.DeadZone, Y: c.Camera.DeadZone},
		Gain:         c.Camera.Gain,
		SlowRadius:   c.Camera.SlowRadius,
		SnapDistance: c.Camera.SnapDistance,
	}
	return cfg
}

// WS собирает конфиг сокета. token вызывается на каждом подключении.
func (c Config) WS(token func() string) (network.WSConfig, error) {
	codec, err := network.CodecByName(c.Server.Codec)
	if err != nil {
		return network.WSConfig{}, err
	}
	return network.WSConfig{
		URL:        c.Server.URL,
		Token:      token,
		Codec:      codec,
		AckTimeout: c.Server.AckTimeout,
	}, nil
}
