// pvestimate-cli prints a single yield estimate without running the server.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chrissnell/pvestimate/pkg/responseformat"
	"github.com/chrissnell/pvestimate/pkg/solar"
)

type options struct {
	latitude  *float64
	longitude *float64
	raw       solar.RawConfig
	losses    float64
	coeffs    solar.Coefficients
	format    string
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("pvestimate-cli", flag.ContinueOnError)

	var (
		lat     = fs.Float64("lat", 0, "Latitude in decimal degrees (required)")
		lon     = fs.Float64("lon", 0, "Longitude in decimal degrees (required)")
		kwp     = fs.Float64("kwp", solar.DefaultSystemKWp, "System size in kWp")
		tilt    = fs.Float64("tilt", 0, "Roof tilt in degrees from horizontal (default: optimal for latitude)")
		aspect  = fs.Float64("aspect", 0, "Roof aspect in degrees clockwise from north (default: equator-facing)")
		shading = fs.String("shading", string(solar.ShadingNone), "Shading level: none, light, some, heavy")
		losses  = fs.Float64("losses", solar.DefaultLossesPercent, "System losses in percent")
		turb    = fs.Float64("turbidity", solar.DefaultCoefficients().Turbidity, "Linke turbidity of the clear sky")
		albedo  = fs.Float64("albedo", solar.DefaultCoefficients().Albedo, "Ground reflectance")
		format  = fs.String("format", "json", "Output format: json or msgpack")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	// Only flags the user actually passed become explicit values
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := options{
		losses: *losses,
		coeffs: solar.Coefficients{Turbidity: *turb, Albedo: *albedo},
		format: *format,
	}
	if set["lat"] {
		opts.latitude = lat
	}
	if set["lon"] {
		opts.longitude = lon
	}
	if set["kwp"] {
		opts.raw.SystemKWp = kwp
	}
	if set["tilt"] {
		opts.raw.RoofTiltDeg = tilt
	}
	if set["aspect"] {
		opts.raw.RoofAspectDeg = aspect
	}
	if set["shading"] {
		opts.raw.ShadingLevel = shading
	}

	if opts.latitude == nil || opts.longitude == nil {
		return options{}, errors.New("-lat and -lon are required")
	}
	if opts.format != "json" && opts.format != "msgpack" {
		return options{}, fmt.Errorf("unsupported format %q. Use 'json' or 'msgpack'", opts.format)
	}
	return opts, nil
}

func run(opts options, out io.Writer) error {
	if err := opts.coeffs.Validate(); err != nil {
		return err
	}
	estimator, err := solar.NewEstimator(solar.NewClearSkyModel(opts.coeffs), solar.WithLossesPercent(opts.losses))
	if err != nil {
		return err
	}

	estimate, err := estimator.CalculateCoordinates(*opts.latitude, *opts.longitude, opts.raw)
	if err != nil {
		return err
	}

	if opts.format == "msgpack" {
		b, err := responseformat.EncodeMsgPack(estimate)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(estimate)
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		var invalid *solar.InvalidConfigError
		if errors.As(err, &invalid) {
			fmt.Fprintln(os.Stderr, "Invalid configuration:")
			for _, f := range invalid.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
