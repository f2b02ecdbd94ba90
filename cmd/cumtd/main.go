// Command cumtd queries the CUMTD developer API and prints the normalized
// result as indented JSON.
//
// Usage:
//
//	cumtd [-config file] stops  [-ids a,b | -lat y -lon x [-count n]]
//	cumtd [-config file] routes [-ids a,b | -stop id]
//	cumtd [-config file] shapes -shape id [-begin id -end id] [-polyline]
//	cumtd [-config file] dates  (-date YYYY-MM-DD | -service id)
//
// The API key is read from CUMTD_API_KEY or the configuration file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/MinhPhan8803/cumtd/internal/api/models"
	"github.com/MinhPhan8803/cumtd/internal/config"
	"github.com/MinhPhan8803/cumtd/pkg/cumtd"
	"github.com/MinhPhan8803/cumtd/pkg/polyline"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks command line mistakes.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("cumtd", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to a YAML configuration file")
	verbose := global.Bool("v", false, "log upstream requests to stderr")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: cumtd [-config file] [-v] stops|routes|shapes|dates [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	}

	client, err := cumtd.NewClient(cfg.CUMTD.ClientConfig(nil, logger))
	if err != nil {
		return fail(stderr, err)
	}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	var result any
	switch cmd {
	case "stops":
		result, err = runStops(ctx, client, cmdArgs, stderr)
	case "routes":
		result, err = runRoutes(ctx, client, cmdArgs, stderr)
	case "shapes":
		result, err = runShapes(ctx, client, cmdArgs, stderr)
	case "dates":
		result, err = runDates(ctx, client, cmdArgs, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		global.Usage()
		return exitUsage
	}
	if err != nil {
		return fail(stderr, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "error: writing output: %v\n", err)
		return exitError
	}
	return exitOK
}

// fail reports err and returns the exit code. Query failures are prefixed
// with their kind.
func fail(stderr io.Writer, err error) int {
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitUsage
	}

	var cerr *cumtd.Error
	if errors.As(err, &cerr) {
		fmt.Fprintf(stderr, "error (%s): %v\n", cerr.Kind, err)
		return exitError
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitError
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse wraps flag errors so they map to the usage exit code.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func runStops(ctx context.Context, client *cumtd.Client, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("stops", stderr)
	ids := fs.String("ids", "", "comma separated stop ids")
	lat := fs.Float64("lat", 0, "latitude of the search center")
	lon := fs.Float64("lon", 0, "longitude of the search center")
	count := fs.Int("count", 0, "maximum number of stops near lat/lon")
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var q cumtd.StopsQuery = cumtd.AllStops{}
	switch {
	case set["ids"] && (set["lat"] || set["lon"] || set["count"]):
		return nil, fmt.Errorf("%w: -ids cannot be combined with -lat/-lon/-count", errUsage)
	case set["ids"]:
		list := splitIDs(*ids)
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: -ids is empty", errUsage)
		}
		q = cumtd.StopsByID{IDs: list}
	case set["lat"] || set["lon"] || set["count"]:
		b := cumtd.NewLatLonQueryBuilder()
		if set["lat"] {
			b.Lat(*lat)
		}
		if set["lon"] {
			b.Lon(*lon)
		}
		if set["count"] {
			b.Count(*count)
		}
		latlon, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		q = cumtd.StopsByLatLon{Query: latlon}
	}

	stops, err := client.QueryStops(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.NewStopList(stops), nil
}

func runRoutes(ctx context.Context, client *cumtd.Client, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("routes", stderr)
	ids := fs.String("ids", "", "comma separated route ids")
	stop := fs.String("stop", "", "list the routes serving this stop")
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	var q cumtd.RoutesQuery = cumtd.AllRoutes{}
	switch {
	case *ids != "" && *stop != "":
		return nil, fmt.Errorf("%w: -ids and -stop are mutually exclusive", errUsage)
	case *ids != "":
		list := splitIDs(*ids)
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: -ids is empty", errUsage)
		}
		q = cumtd.RoutesByID{IDs: list}
	case *stop != "":
		q = cumtd.RoutesByStop{StopID: *stop}
	}

	routes, err := client.QueryRoutes(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.NewRouteList(routes), nil
}

func runShapes(ctx context.Context, client *cumtd.Client, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("shapes", stderr)
	shapeID := fs.String("shape", "", "shape id (required)")
	begin := fs.String("begin", "", "first stop of a sub-shape")
	end := fs.String("end", "", "last stop of a sub-shape")
	encode := fs.Bool("polyline", false, "print the geometry as an encoded polyline")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *shapeID == "" {
		return nil, fmt.Errorf("%w: -shape is required", errUsage)
	}
	if (*begin == "") != (*end == "") {
		return nil, fmt.Errorf("%w: -begin and -end must be given together", errUsage)
	}

	var q cumtd.ShapesQuery = cumtd.FullShape{ShapeID: *shapeID}
	if *begin != "" {
		q = cumtd.ShapeBetweenStops{Spec: cumtd.NewShapeSpecifier(*begin, *end, *shapeID)}
	}

	points, err := client.QueryShapes(ctx, q)
	if err != nil {
		return nil, err
	}

	encoded, length := polyline.EncodeShape(points)
	shape := models.Shape{
		ShapeID:      *shapeID,
		BeginStopID:  *begin,
		EndStopID:    *end,
		PointCount:   len(points),
		LengthMeters: length,
	}
	if *encode {
		shape.Polyline = encoded
	} else {
		shape.Points = models.NewShapePoints(points)
	}
	return shape, nil
}

func runDates(ctx context.Context, client *cumtd.Client, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("dates", stderr)
	date := fs.String("date", "", "calendar day, YYYY-MM-DD")
	service := fs.String("service", "", "service id")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if (*date == "") == (*service == "") {
		return nil, fmt.Errorf("%w: exactly one of -date or -service is required", errUsage)
	}

	var q cumtd.CalendarDatesQuery = cumtd.CalendarDatesByService{ServiceID: *service}
	if *date != "" {
		d, err := cumtd.ParseDate(*date)
		if err != nil {
			return nil, fmt.Errorf("%w: -date: %v", errUsage, err)
		}
		q = cumtd.CalendarDatesByDate{Date: d}
	}

	dates, err := client.QueryCalendarDates(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.NewCalendarDateList(dates), nil
}
