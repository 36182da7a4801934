package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all run settings, populated from environment variables.
// Paths default relative to BaseDir.
type Config struct {
	BaseDir         string        `env:"BASE_DIR" validate:"required"`
	ClimatePath     string        `env:"CLIMATE_CSV_PATH" validate:"required"`
	StationsPath    string        `env:"STATIONS_PATH" validate:"required"`
	DBDriver        string        `env:"DB_DRIVER" validate:"oneof=sqlite pgx"`
	DBDSN           string        `env:"DB_DSN" validate:"required"`
	DBTable         string        `env:"DB_TABLE" validate:"required"`
	ReportPath      string        `env:"REPORT_PATH" validate:"required"`
	MapsDir         string        `env:"MAPS_DIR" validate:"required"`
	CorrectionsPath string        `env:"CORRECTIONS_PATH"`
	PlotlyURL       string        `env:"PLOTLY_CDN_URL" validate:"required,url"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	RunTimeout      time.Duration `env:"RUN_TIMEOUT" validate:"gt=0"`
	MetricsFile     string        `env:"METRICS_FILE"`

	// Optional exports.
	XLSXPath     string   `env:"XLSX_PATH"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" validate:"dive,hostname_port"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_with=KafkaBrokers"`
	S3Endpoint   string   `env:"S3_ENDPOINT"`
	S3AccessKey  string   `env:"S3_ACCESS_KEY" validate:"required_with=S3Endpoint"`
	S3SecretKey  string   `env:"S3_SECRET_KEY" validate:"required_with=S3Endpoint"`
	S3Bucket     string   `env:"S3_BUCKET" validate:"required_with=S3Endpoint"`
	S3Prefix     string   `env:"S3_PREFIX"`
	S3UseSSL     bool     `env:"S3_USE_SSL"`
}

// KafkaEnabled reports whether joined records are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// S3Enabled reports whether report artifacts are uploaded.
func (c *Config) S3Enabled() bool { return c.S3Endpoint != "" }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report environment variable names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Load reads configuration from an optional .env file and the environment,
// applying defaults where unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	baseDir, err := defaultBaseDir()
	if err != nil {
		return nil, err
	}
	baseDir = envOrDefault("BASE_DIR", baseDir)

	runTimeout, err := time.ParseDuration(envOrDefault("RUN_TIMEOUT", "5m"))
	if err != nil {
		return nil, errors.New("invalid RUN_TIMEOUT")
	}

	cfg := &Config{
		BaseDir:         baseDir,
		ClimatePath:     envOrDefault("CLIMATE_CSV_PATH", filepath.Join(baseDir, "datasets", "ESTADISTICAS CLIMATICAS NORMALES.CSV")),
		StationsPath:    envOrDefault("STATIONS_PATH", filepath.Join(baseDir, "datasets", "ESTACIONES METEOROLOGICAS.TXT")),
		DBDriver:        envOrDefault("DB_DRIVER", "sqlite"),
		DBDSN:           envOrDefault("DB_DSN", filepath.Join(baseDir, "clima.db")),
		DBTable:         envOrDefault("DB_TABLE", "datos_climaticos"),
		ReportPath:      envOrDefault("REPORT_PATH", filepath.Join(baseDir, "dashboard_climatico.html")),
		MapsDir:         envOrDefault("MAPS_DIR", filepath.Join(baseDir, "mapas")),
		CorrectionsPath: os.Getenv("CORRECTIONS_PATH"),
		PlotlyURL:       envOrDefault("PLOTLY_CDN_URL", "https://cdn.plot.ly/plotly-2.35.2.min.js"),
		LogLevel:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		RunTimeout:      runTimeout,
		MetricsFile:     os.Getenv("METRICS_FILE"),

		XLSXPath:     os.Getenv("XLSX_PATH"),
		KafkaBrokers: parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "climate-normals"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Prefix:     envOrDefault("S3_PREFIX", "reports"),
		S3UseSSL:     os.Getenv("S3_USE_SSL") == "true",
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	return cfg, nil
}

// LogValue keeps credentials out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_dir", c.BaseDir),
		slog.String("climate_path", c.ClimatePath),
		slog.String("stations_path", c.StationsPath),
		slog.String("db_driver", c.DBDriver),
		slog.String("db_table", c.DBTable),
		slog.String("report_path", c.ReportPath),
		slog.String("maps_dir", c.MapsDir),
		slog.Bool("kafka_enabled", c.KafkaEnabled()),
		slog.Bool("s3_enabled", c.S3Enabled()),
		slog.Bool("xlsx_enabled", c.XLSXPath != ""),
	)
}

// defaultBaseDir is the directory holding the running executable.
func defaultBaseDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s (%s)", field, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
