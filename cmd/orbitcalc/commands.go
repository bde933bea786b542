package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kspcalc/orbitcalc"
	"github.com/kspcalc/orbitcalc/tools"
	"github.com/spf13/cobra"
)

func bodiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the reference bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.conf.Catalog()
			if err != nil {
				return err
			}
			bodies := catalog.Bodies()
			return a.print(cmd.OutOrStdout(), bodies, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tMASS (kg)\tRADIUS (m)")
				for _, b := range bodies {
					fmt.Fprintf(tw, "%s\t%g\t%g\n", b.Name, b.Mass, b.Radius)
				}
				return tw.Flush()
			})
		},
	}
}

type resolveOutput struct {
	orbitcalc.OrbitState `yaml:",inline"`
	Lock                 string             `yaml:"lock"`
	Period               string             `yaml:"period"`
	Warnings             orbitcalc.Warnings `yaml:"warnings"`
}

func resolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Apply field changes in order and print the resulting orbit",
		Example: `  orbitcalc resolve --set e=0.1
  orbitcalc resolve --body Duna --lock Ap_lock --set Ap=500000 --set a=900000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := cmd.Flags().GetStringArray("set")
			if err != nil {
				return err
			}
			catalog, err := a.conf.Catalog()
			if err != nil {
				return err
			}
			init, err := a.conf.Initial()
			if err != nil {
				return err
			}
			s, err := orbitcalc.NewSession(a.newResolver(), catalog, init)
			if err != nil {
				return err
			}
			s.Strict = a.conf.General.Strict
			form := formValues{}
			s.Render(form)
			for _, set := range sets {
				field, v, err := parseAssignment(set)
				if err != nil {
					return err
				}
				form.SetField(field, v)
				if err := s.Read(form, field); err != nil {
					return fmt.Errorf("%s: %w", set, err)
				}
				s.Render(form)
			}

			state := s.State()
			out := resolveOutput{OrbitState: state, Lock: state.Lock.String(), Period: s.VerbosePeriod(), Warnings: s.Warnings()}
			return a.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
				fmt.Fprintf(tw, "body\t%s\n", state.Body)
				fmt.Fprintf(tw, "lock\t%s\n", state.Lock)
				for _, f := range orbitcalc.Fields {
					fmt.Fprintf(tw, "%s\t%s\n", f, strconv.FormatFloat(form.Field(f), 'f', -1, 64))
				}
				fmt.Fprintf(tw, "period\t%s\n", out.Period)
				if out.Warnings.Any() {
					fmt.Fprintf(tw, "warning\t%s\n", out.Warnings)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().String("body", "", "initial reference body")
	cmd.Flags().String("lock", "", "lock: e_lock, Ap_lock or Pe_lock")
	cmd.Flags().Bool("strict", false, "fail as soon as the orbit is not a valid closed orbit")
	cmd.Flags().Int("places", orbitcalc.DefaultPlaces, "rounding precision")
	cmd.Flags().StringArray("set", nil, "field=value change, repeatable and applied in order")
	return cmd
}

type durationOutput struct {
	Seconds  float64       `yaml:"seconds"`
	Kerbin   string        `yaml:"kerbin"`
	Duration time.Duration `yaml:"duration"`
}

func durationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duration SECONDS...",
		Short: "Format durations with six-hour days",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]durationOutput, 0, len(args))
			for _, arg := range args {
				v, err := parseFloat(arg)
				if err != nil {
					return err
				}
				out = append(out, durationOutput{Seconds: v, Kerbin: orbitcalc.FormatDuration(v), Duration: orbitcalc.PeriodDuration(v)})
			}
			return a.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				for _, d := range out {
					fmt.Fprintln(w, d.Kerbin)
				}
				return nil
			})
		},
	}
}

func triangulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triangulate [A2...]",
		Short: "Distance from a point at radius A2 to the farthest end of a polygon edge",
		Long: `Without any outer radius, triangulates the usual example radii
(5e9, 10e9, 13e9, 21e9, 47e9, 72e9 and 115e9).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a1, _ := cmd.Flags().GetFloat64("a1")
			n, _ := cmd.Flags().GetInt("n")
			radii := tools.ExampleOuterRadii
			if len(args) > 0 {
				radii = make([]float64, len(args))
				for i, arg := range args {
					v, err := parseFloat(arg)
					if err != nil {
						return err
					}
					radii[i] = v
				}
			}
			out := make([]tools.Triangulation, 0, len(radii))
			for _, a2 := range radii {
				tr, err := tools.Triangulate(a1, a2, n)
				if err != nil {
					return err
				}
				out = append(out, tr)
			}
			return a.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
				fmt.Fprintln(tw, "a2\tc\th1\th2\td/1e9")
				for _, tr := range out {
					fmt.Fprintf(tw, "%g\t%g\t%g\t%g\t%s\n", tr.Outer, tr.Chord, tr.Apothem, tr.Offset, strconv.FormatFloat(tr.Distance/1e9, 'f', -1, 64))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Float64("a1", tools.ExampleInnerRadius, "inner radius")
	cmd.Flags().Int("n", tools.ExampleOrder, "polygon order")
	return cmd
}

func hohmannCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hohmann",
		Short:   "Burns and time of flight between two circular orbits",
		Example: "  orbitcalc hohmann --body Kerbin --from 100000 --to 2863334.06",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetFloat64("from")
			to, _ := cmd.Flags().GetFloat64("to")
			catalog, err := a.conf.Catalog()
			if err != nil {
				return err
			}
			body, err := catalog.Lookup(a.conf.General.Body)
			if err != nil {
				return err
			}
			if body.IsCustom() {
				return fmt.Errorf("%s has no mass nor radius", body)
			}
			h := orbitcalc.Hohmann(body, from, to)
			return a.print(cmd.OutOrStdout(), h, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s %s\n", body.Name, h)
				return err
			})
		},
	}
	cmd.Flags().String("body", "", "reference body")
	cmd.Flags().Float64("from", 0, "altitude of the initial circular orbit (m)")
	cmd.Flags().Float64("to", 0, "altitude of the final circular orbit (m)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
