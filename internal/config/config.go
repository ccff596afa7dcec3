package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ray1729/survey-prep/pkg/nmealog"
	"github.com/ray1729/survey-prep/pkg/polygons"
	"github.com/ray1729/survey-prep/pkg/reproject"
)

const SurveyDateLayout = "2006-01-02"

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Polygons PolygonsConfig `yaml:"polygons"`
	GPS      GPSConfig      `yaml:"gps"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type PolygonsConfig struct {
	Dir        string `yaml:"dir"`
	FromEPSG   int    `yaml:"from_epsg"`
	ToEPSG     int    `yaml:"to_epsg"`
	Duplicates string `yaml:"duplicates"`
}

type GPSConfig struct {
	WorkDir        string `yaml:"work_dir"`
	Archive        string `yaml:"archive"`
	DataDir        string `yaml:"data_dir"`
	Sentence       string `yaml:"sentence"`
	Output         string `yaml:"output"`
	Conversion     string `yaml:"conversion"`
	VerifyChecksum bool   `yaml:"verify_checksum"`
	Strict         bool   `yaml:"strict"`
	SurveyDate     string `yaml:"survey_date"`
	GPXOutput      string `yaml:"gpx_output"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	if err := cfg.applyDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a YAML config file and fills in defaults. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Polygons.Dir == "" {
		cfg.Polygons.Dir = "."
	}
	if cfg.Polygons.FromEPSG == 0 {
		cfg.Polygons.FromEPSG = reproject.EPSGVermontNAD83
	}
	if cfg.Polygons.ToEPSG == 0 {
		cfg.Polygons.ToEPSG = reproject.EPSGWGS84
	}
	if cfg.Polygons.Duplicates == "" {
		cfg.Polygons.Duplicates = string(polygons.KeepLast)
	}
	if cfg.GPS.WorkDir == "" {
		cfg.GPS.WorkDir = "."
	}
	if cfg.GPS.Archive == "" {
		cfg.GPS.Archive = nmealog.DefaultArchive
	}
	if cfg.GPS.DataDir == "" {
		cfg.GPS.DataDir = nmealog.DefaultDataDir
	}
	if cfg.GPS.Sentence == "" {
		cfg.GPS.Sentence = nmealog.DefaultSentence
	}
	if cfg.GPS.Output == "" {
		cfg.GPS.Output = nmealog.DefaultOutput
	}
	if cfg.GPS.Conversion == "" {
		cfg.GPS.Conversion = string(nmealog.Legacy)
	}
	return cfg.Validate()
}

func (cfg *Config) Validate() error {
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	if cfg.Polygons.FromEPSG < 0 || cfg.Polygons.ToEPSG < 0 {
		return fmt.Errorf("polygons epsg codes must be positive")
	}
	if _, err := polygons.ParseDuplicatePolicy(cfg.Polygons.Duplicates); err != nil {
		return fmt.Errorf("polygons.duplicates is invalid: %w", err)
	}
	if _, err := nmealog.ParseConversion(cfg.GPS.Conversion); err != nil {
		return fmt.Errorf("gps.conversion is invalid: %w", err)
	}
	if _, err := cfg.GPS.Date(); err != nil {
		return fmt.Errorf("gps.survey_date must be YYYY-MM-DD")
	}
	return nil
}

// Date returns the survey date, or the zero time if none is set.
func (g GPSConfig) Date() (time.Time, error) {
	if g.SurveyDate == "" {
		return time.Time{}, nil
	}
	return time.Parse(SurveyDateLayout, g.SurveyDate)
}

// Path resolves name against the work directory. Absolute names are
// returned unchanged.
func (g GPSConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(g.WorkDir, name)
}
