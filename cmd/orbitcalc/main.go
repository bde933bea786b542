package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/kspcalc/orbitcalc"
	"github.com/kspcalc/orbitcalc/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"body":      "general.body",
	"lock":      "general.lock",
	"strict":    "general.strict",
	"places":    "general.places",
}

type app struct {
	cfgFile     string
	output      string
	withMetrics bool

	conf      orbitcalc.Config
	logger    kitlog.Logger
	collector *metrics.Collector
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "orbitcalc",
		Short: "Kerbal orbit calculator",
		Long: `Keeps the semi-major axis, altitude, period, eccentricity and apsides of an orbit
consistent as any one of them changes, under a lock which decides which of the
eccentricity, apoapsis or periapsis is held.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.Flags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.collector == nil {
				return nil
			}
			return a.collector.WriteText(cmd.OutOrStdout())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "configuration directory or file (default is $"+orbitcalc.ConfigEnv+")")
	flags.String("log-level", "", "log level: debug, info, warn, error or none")
	flags.StringVarP(&a.output, "output", "o", outputText, "output format: text or yaml")
	flags.BoolVar(&a.withMetrics, "metrics", false, "print the resolver metrics after the command")

	rootCmd.AddCommand(
		bodiesCmd(a),
		resolveCmd(a),
		durationCmd(a),
		triangulateCmd(a),
		hohmannCmd(a),
	)
	return rootCmd
}

// load reads the configuration with the flags taking precedence.
func (a *app) load(flags *pflag.FlagSet) error {
	if a.output != outputText && a.output != outputYAML {
		return fmt.Errorf("unknown output format '%s'", a.output)
	}
	v := viper.New()
	orbitcalc.SetConfigDefaults(v)
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := orbitcalc.ReadConfigFile(v, a.cfgFile); err != nil {
		return err
	}
	conf, err := orbitcalc.ConfigFromViper(v)
	if err != nil {
		return err
	}
	a.conf = conf
	a.logger = conf.Logger(os.Stderr)
	if a.withMetrics {
		// A fresh registry keeps the Go runtime collectors out of the output.
		if a.collector, err = metrics.NewCollector(prometheus.NewRegistry()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) newResolver() *orbitcalc.Resolver {
	r := a.conf.NewResolver(a.logger)
	if a.collector != nil {
		r.Observer = a.collector
	}
	return r
}

func (a *app) print(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if a.output == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(w)
}

// formValues is a FieldAccessor over the values given on the command line.
type formValues map[orbitcalc.Field]float64

func (f formValues) Field(field orbitcalc.Field) float64 {
	return f[field]
}

func (f formValues) SetField(field orbitcalc.Field, v float64) {
	f[field] = v
}

// parseAssignment parses "field=value".
func parseAssignment(s string) (orbitcalc.Field, float64, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("expected field=value, got '%s'", s)
	}
	field, err := orbitcalc.ParseField(name)
	if err != nil {
		return 0, 0, err
	}
	v, err := parseFloat(value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value for %s: %w", field, err)
	}
	return field, v, nil
}
