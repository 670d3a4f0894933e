package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Camera    CameraConfig    `mapstructure:"camera"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// CameraConfig is the camera envelope. Durations are in milliseconds and the
// allowed area is a lon/lat ring, optionally replaced by a GeoJSON file.
type CameraConfig struct {
	WKID          int     `mapstructure:"wkid"`
	MinZ          float64 `mapstructure:"min_z"`
	MaxZ          float64 `mapstructure:"max_z"`
	FixedHeading  float64 `mapstructure:"fixed_heading"`
	MinTilt       float64 `mapstructure:"min_tilt"`
	MaxTilt       float64 `mapstructure:"max_tilt"`
	TiltStep      float64 `mapstructure:"tilt_step"`
	Tolerance     float64 `mapstructure:"tolerance"`
	PinchDeadband float64 `mapstructure:"pinch_deadband"`
	FocusZ        float64 `mapstructure:"focus_z"`

	Initial InitialCameraConfig `mapstructure:"initial"`

	TiltTransitionMS   int `mapstructure:"tilt_transition_ms"`
	TiltGraceMS        int `mapstructure:"tilt_grace_ms"`
	ReturnTransitionMS int `mapstructure:"return_transition_ms"`
	ReturnGraceMS      int `mapstructure:"return_grace_ms"`
	FocusTransitionMS  int `mapstructure:"focus_transition_ms"`
	FocusGraceMS       int `mapstructure:"focus_grace_ms"`
	SettleTimeoutMS    int `mapstructure:"settle_timeout_ms"`

	Area     [][]float64 `mapstructure:"area"`
	AreaFile string      `mapstructure:"area_file"`
}

type InitialCameraConfig struct {
	Longitude float64 `mapstructure:"longitude"`
	Latitude  float64 `mapstructure:"latitude"`
	Z         float64 `mapstructure:"z"`
	Heading   float64 `mapstructure:"heading"`
	Tilt      float64 `mapstructure:"tilt"`
}

// SpatialReference is the view's spatial reference.
func (c CameraConfig) SpatialReference() domain.SpatialReference {
	return domain.SpatialReference{WKID: c.WKID}
}

// Controller converts the section into a controller config.
func (c CameraConfig) Controller() camera.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return camera.Config{
		MinAltitude:   c.MinZ,
		MaxAltitude:   c.MaxZ,
		FixedHeading:  c.FixedHeading,
		MinTilt:       c.MinTilt,
		MaxTilt:       c.MaxTilt,
		TiltStep:      c.TiltStep,
		Tolerance:     c.Tolerance,
		PinchDeadband: c.PinchDeadband,
		InitialCamera: domain.Camera{
			Position: domain.Position{
				Longitude: c.Initial.Longitude,
				Latitude:  c.Initial.Latitude,
				Altitude:  c.Initial.Z,
			},
			Heading: c.Initial.Heading,
			Tilt:    c.Initial.Tilt,
		},
		FocusAltitude:    c.FocusZ,
		TiltTransition:   ms(c.TiltTransitionMS),
		TiltGrace:        ms(c.TiltGraceMS),
		ReturnTransition: ms(c.ReturnTransitionMS),
		ReturnGrace:      ms(c.ReturnGraceMS),
		FocusTransition:  ms(c.FocusTransitionMS),
		FocusGrace:       ms(c.FocusGraceMS),
		SettleTimeout:    ms(c.SettleTimeoutMS),
	}
}

// Ring returns the configured area as geographic points.
func (c CameraConfig) Ring() []domain.GeoPoint {
	ring := make([]domain.GeoPoint, 0, len(c.Area))
	for _, pair := range c.Area {
		if len(pair) != 2 {
			continue
		}
		ring = append(ring, domain.GeoPoint{Lon: pair[0], Lat: pair[1]})
	}
	return ring
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ARTMAP_DATABASE_HOST → database.host
	v.SetEnvPrefix("ARTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "artmap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "artmap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "comment-moderation")

	d := camera.DefaultConfig()
	v.SetDefault("camera.wkid", domain.WKIDWebMercator)
	v.SetDefault("camera.min_z", d.MinAltitude)
	v.SetDefault("camera.max_z", d.MaxAltitude)
	v.SetDefault("camera.fixed_heading", d.FixedHeading)
	v.SetDefault("camera.min_tilt", d.MinTilt)
	v.SetDefault("camera.max_tilt", d.MaxTilt)
	v.SetDefault("camera.tilt_step", d.TiltStep)
	v.SetDefault("camera.tolerance", d.Tolerance)
	v.SetDefault("camera.pinch_deadband", d.PinchDeadband)
	v.SetDefault("camera.focus_z", d.FocusAltitude)
	v.SetDefault("camera.initial.longitude", d.InitialCamera.Position.Longitude)
	v.SetDefault("camera.initial.latitude", d.InitialCamera.Position.Latitude)
	v.SetDefault("camera.initial.z", d.InitialCamera.Position.Altitude)
	v.SetDefault("camera.initial.heading", d.InitialCamera.Heading)
	v.SetDefault("camera.initial.tilt", d.InitialCamera.Tilt)
	v.SetDefault("camera.tilt_transition_ms", d.TiltTransition.Milliseconds())
	v.SetDefault("camera.tilt_grace_ms", d.TiltGrace.Milliseconds())
	v.SetDefault("camera.return_transition_ms", d.ReturnTransition.Milliseconds())
	v.SetDefault("camera.return_grace_ms", d.ReturnGrace.Milliseconds())
	v.SetDefault("camera.focus_transition_ms", d.FocusTransition.Milliseconds())
	v.SetDefault("camera.focus_grace_ms", d.FocusGrace.Milliseconds())
	v.SetDefault("camera.settle_timeout_ms", d.SettleTimeout.Milliseconds())
	v.SetDefault("camera.area", [][]float64{
		{139.611, 35.5265},
		{139.611, 35.555},
		{139.648, 35.555},
		{139.648, 35.5265},
		{139.611, 35.5265},
	})
	v.SetDefault("camera.area_file", "")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	switch c.Camera.WKID {
	case domain.WKIDWGS84, domain.WKIDWebMercator:
	default:
		errs = append(errs, fmt.Sprintf("camera.wkid must be %d or %d, got %d", domain.WKIDWGS84, domain.WKIDWebMercator, c.Camera.WKID))
	}
	if c.Camera.AreaFile != "" {
		if _, err := os.Stat(c.Camera.AreaFile); err != nil {
			errs = append(errs, fmt.Sprintf("camera.area_file: %v", err))
		}
	} else if n := len(c.Camera.Ring()); n < 4 {
		errs = append(errs, fmt.Sprintf("camera.area needs a closed ring of at least 4 lon/lat pairs, got %d", n))
	}
	if err := c.Camera.Controller().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
