package orbitcalc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable pointing to the configuration directory or file.
const ConfigEnv = "ORBITCALC_CONFIG"

// Config is the orbitcalc configuration, usually read from conf.toml.
type Config struct {
	General GeneralConfig   `mapstructure:"general"`
	Log     LogConfig       `mapstructure:"log"`
	Bodies  []ReferenceBody `mapstructure:"bodies"`
}

// GeneralConfig sets the initial orbit and how values are rounded.
type GeneralConfig struct {
	Body         string  `mapstructure:"body"`
	Lock         string  `mapstructure:"lock"`
	Altitude     float64 `mapstructure:"altitude"`
	Eccentricity float64 `mapstructure:"eccentricity"`
	Places       int     `mapstructure:"places"`
	Strict       bool    `mapstructure:"strict"`
}

// LogConfig sets the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetConfigDefaults registers every default on v.
func SetConfigDefaults(v *viper.Viper) {
	v.SetDefault("general.body", Kerbin.Name)
	v.SetDefault("general.lock", ELock.String())
	v.SetDefault("general.altitude", 100000.0)
	v.SetDefault("general.eccentricity", 0.0)
	v.SetDefault("general.places", DefaultPlaces)
	v.SetDefault("general.strict", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "logfmt")
}

// LoadConfig reads the configuration from path, which is either a directory holding conf.toml
// or a configuration file. An empty path falls back to $ORBITCALC_CONFIG and then to the defaults.
// Any key may be overridden by the environment, e.g. ORBITCALC_GENERAL_BODY=Duna.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	SetConfigDefaults(v)
	if err := ReadConfigFile(v, path); err != nil {
		return Config{}, err
	}
	return ConfigFromViper(v)
}

// ReadConfigFile reads the configuration at path, or at $ORBITCALC_CONFIG if path is empty, into v.
// Nothing is read when both are empty.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.SetConfigName("conf")
		v.AddConfigPath(path)
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read configuration in %s: %w", path, err)
	}
	return nil
}

// ConfigFromViper decodes and validates the configuration held by v.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("ORBITCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("could not decode configuration: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return conf, nil
}

// Validate checks the configuration, including that the initial body exists.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseLock(c.General.Lock); err != nil {
		errs = append(errs, err)
	}
	if c.General.Places < 0 {
		errs = append(errs, fmt.Errorf("places=%d cannot be negative", c.General.Places))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "logfmt" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format '%s'", c.Log.Format))
	}
	if catalog, err := c.Catalog(); err != nil {
		errs = append(errs, err)
	} else if _, err := catalog.Lookup(c.General.Body); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Catalog returns the default catalog extended with the configured bodies.
func (c Config) Catalog() (*Catalog, error) {
	return DefaultCatalog().Extend(c.Bodies...)
}

// Initial returns the initial orbit of a session.
func (c Config) Initial() (Initial, error) {
	lock, err := ParseLock(c.General.Lock)
	if err != nil {
		return Initial{}, err
	}
	return Initial{Body: c.General.Body, Altitude: c.General.Altitude, Eccentricity: c.General.Eccentricity, Lock: lock}, nil
}

// Logger returns a leveled logger writing to w.
func (c Config) Logger(w io.Writer) kitlog.Logger {
	var logger kitlog.Logger
	if strings.ToLower(c.Log.Format) == "json" {
		logger = finiteJSON(kitlog.NewJSONLogger(kitlog.NewSyncWriter(w)))
	} else {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	}
	allow, err := parseLevel(c.Log.Level)
	if err != nil {
		allow = level.AllowInfo()
	}
	return kitlog.With(level.NewFilter(logger, allow), "ts", kitlog.DefaultTimestampUTC)
}

// NewResolver returns a resolver logging to logger with the configured precision.
func (c Config) NewResolver(logger kitlog.Logger) *Resolver {
	r := NewResolver(logger)
	r.Places = c.General.Places
	return r
}

// finiteJSON writes NaN and infinities as strings, which encoding/json would otherwise
// reject along with the whole line.
func finiteJSON(next kitlog.Logger) kitlog.Logger {
	return kitlog.LoggerFunc(func(keyvals ...interface{}) error {
		kvs := make([]interface{}, len(keyvals))
		copy(kvs, keyvals)
		for i := 1; i < len(kvs); i += 2 {
			if v, ok := kvs[i].(float64); ok && !finite(v) {
				kvs[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		return next.Log(kvs...)
	})
}

func parseLevel(s string) (level.Option, error) {
	switch strings.ToLower(s) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("unknown log level '%s'", s)
}
