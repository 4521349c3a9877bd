package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"github.com/twpayne/go-earthengine"
)

// An errorResponse is printed in place of band values when a query fails.
type errorResponse struct {
	Error string `json:"error"`
	Trace string `json:"trace,omitempty"`
}

// An outputError is an error writing the result. It is the only error that
// causes a non-zero exit status.
type outputError struct {
	err error
}

func (e *outputError) Error() string { return e.err.Error() }

func (e *outputError) Unwrap() error { return e.err }

type flags struct {
	config       string
	project      string
	baseURL      string
	collection   string
	sortProperty string
	scale        float64
	maxPixels    float64
	bands        []string
	crs          string
	timeout      time.Duration
	verbose      bool
}

func newRootCommand(getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "ee-point-value [flags] <lat> <lon>",
		Short: "Print the latest Earth Engine band values at a point as JSON",
		Long: `Print the mean value of each band of the most recent image of an Earth Engine
image collection at a point as a single JSON object.

Failures are printed as {"error": "..."} and the exit status is zero.
Credentials are Application Default Credentials unless EARTHENGINE_TOKEN is set.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result any
			if len(args) < 2 {
				result = errorResponse{Error: "missing args"}
			} else if config, err := configFromFlags(cmd, &f, getenv); err != nil {
				result = errorResponse{Error: err.Error()}
			} else {
				level, _ := parseLogLevel(config.LogLevel)
				if f.verbose {
					level = slog.LevelDebug
				}
				result = pointValue(cmd.Context(), config, args[0], args[1], newLogger(stderr, level))
			}
			if err := writeJSON(stdout, result); err != nil {
				return &outputError{err: err}
			}
			return nil
		},
	}
	// stdout is reserved for the result.
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	flagSet := cmd.Flags()
	flagSet.StringVar(&f.config, "config", "", "YAML configuration file")
	flagSet.StringVar(&f.project, "project", "", "Google Cloud project")
	flagSet.StringVar(&f.baseURL, "base-url", "", "Earth Engine API endpoint")
	flagSet.StringVar(&f.collection, "collection", "", "image collection asset id")
	flagSet.StringVar(&f.sortProperty, "sort-property", "", "property used to find the most recent image")
	flagSet.Float64Var(&f.scale, "scale", 0, "reduction scale in meters")
	flagSet.Float64Var(&f.maxPixels, "max-pixels", 0, "maximum number of pixels to reduce")
	flagSet.StringSliceVar(&f.bands, "band", nil, "band to reduce (repeatable, default all)")
	flagSet.StringVar(&f.crs, "crs", "", "CRS of the coordinates, in its authority axis order")
	flagSet.DurationVar(&f.timeout, "timeout", 0, "query timeout, zero means none")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log debug messages to stderr")

	return cmd
}

// configFromFlags returns the configuration with the flags that were set
// applied last.
func configFromFlags(cmd *cobra.Command, f *flags, getenv func(string) string) (Config, error) {
	config, err := LoadConfig(f.config, getenv)
	if err != nil {
		return Config{}, err
	}
	changed := cmd.Flags().Changed
	if changed("project") {
		config.Project = f.project
	}
	if changed("base-url") {
		config.BaseURL = f.baseURL
	}
	if changed("collection") {
		config.Collection = f.collection
	}
	if changed("sort-property") {
		config.SortProperty = f.sortProperty
	}
	if changed("scale") {
		config.Scale = f.scale
	}
	if changed("max-pixels") {
		config.MaxPixels = f.maxPixels
	}
	if changed("band") {
		config.Bands = f.bands
	}
	if changed("crs") {
		config.CRS = f.crs
	}
	if changed("timeout") {
		config.Timeout = f.timeout
	}
	return config, nil
}

// pointValue performs a single query and returns the value to print, either
// the band values or an errorResponse.
func pointValue(ctx context.Context, config Config, xArg, yArg string, logger *slog.Logger) any {
	x, err := parseCoordinate(xArg)
	if err != nil {
		return errorResponse{Error: fmt.Sprintf("invalid latitude: %v", err)}
	}
	y, err := parseCoordinate(yArg)
	if err != nil {
		return errorResponse{Error: fmt.Sprintf("invalid longitude: %v", err)}
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	clientOptions := []earthengine.ClientOption{
		earthengine.WithBaseURL(config.BaseURL),
		earthengine.WithLogger(logger),
	}
	if config.Project != "" {
		clientOptions = append(clientOptions, earthengine.WithProject(config.Project))
	}
	if config.Token != "" {
		clientOptions = append(clientOptions, earthengine.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: config.Token,
			TokenType:   "Bearer",
		})))
	}
	client, err := earthengine.NewClient(clientOptions...)
	if err != nil {
		return errorResponse{Error: fmt.Sprintf("earthengine not installed: %v", err)}
	}
	if err := client.Initialize(ctx); err != nil {
		return errorResponse{Error: fmt.Sprintf("ee initialize failed: %v", err)}
	}

	pointValueService, err := earthengine.NewPointValueService(client,
		earthengine.WithCollection(config.Collection),
		earthengine.WithSortProperty(config.SortProperty),
		earthengine.WithScale(config.Scale),
		earthengine.WithMaxPixels(config.MaxPixels),
		earthengine.WithBands(config.Bands...),
		earthengine.WithCRS(config.CRS),
	)
	if err != nil {
		return errorResponse{Error: err.Error()}
	}

	logger.InfoContext(ctx, "querying",
		"project", client.Project(),
		"collection", pointValueService.Collection(),
		"x", x,
		"y", y,
	)
	bandValues, err := pointValueService.PointValueCRS(ctx, x, y)
	if err != nil {
		logger.ErrorContext(ctx, "query failed", "err", err)
		return errorResponse{
			Error: err.Error(),
			Trace: fmt.Sprintf("%+v", err),
		}
	}
	return bandValues
}

// parseCoordinate parses s as a finite float64.
func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: not a finite number", s)
	}
	return f, nil
}

// writeJSON writes v to w as a single line of JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// moveCoordinates returns args with all numeric and positional arguments
// moved after a "--" so that negative coordinates are not parsed as flags. The
// result is never nil, as cobra falls back to os.Args for nil args.
func moveCoordinates(flagSet *pflag.FlagSet, args []string) []string {
	flagArgs := []string{}
	var positionalArgs []string
FOR:
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positionalArgs = append(positionalArgs, args[i+1:]...)
			break FOR
		case isNumber(arg):
			positionalArgs = append(positionalArgs, arg)
		case strings.HasPrefix(arg, "-") && !strings.Contains(arg, "="):
			flagArgs = append(flagArgs, arg)
			if takesValue(flagSet, arg) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		case strings.HasPrefix(arg, "-"):
			flagArgs = append(flagArgs, arg)
		default:
			positionalArgs = append(positionalArgs, arg)
		}
	}
	if len(positionalArgs) == 0 {
		return flagArgs
	}
	return append(append(flagArgs, "--"), positionalArgs...)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// takesValue returns whether the flag arg consumes the following argument.
func takesValue(flagSet *pflag.FlagSet, arg string) bool {
	var flag *pflag.Flag
	switch {
	case strings.HasPrefix(arg, "--"):
		flag = flagSet.Lookup(arg[2:])
	case len(arg) == 2:
		flag = flagSet.ShorthandLookup(arg[1:])
	}
	return flag != nil && flag.NoOptDefVal == ""
}

// run is main with the process's environment passed explicitly. Query
// failures are written to stdout and do not cause an error.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	cmd := newRootCommand(getenv, stdout, stderr)
	cmd.SetArgs(moveCoordinates(cmd.Flags(), args[1:]))
	switch err := cmd.ExecuteContext(ctx); {
	case err == nil:
		return nil
	case errors.As(err, new(*outputError)):
		return err
	default:
		return writeJSON(stdout, errorResponse{Error: err.Error()})
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args, os.Getenv, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
