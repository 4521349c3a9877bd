package earthengine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/twpayne/go-proj/v10"
)

const (
	DefaultSortProperty = "system:time_start"
	DefaultScale        = 1000
	DefaultMaxPixels    = 1e9
)

var errNoCollection = errors.New("no collection")

// A PointValueService returns the mean value of each band of the most recent
// image in a collection at a point.
type PointValueService struct {
	client       *Client
	collection   string
	sortProperty string
	scale        float64
	maxPixels    float64
	bands        []string
	crs          string
	pj           *proj.PJ
}

// A PointValueServiceOption sets an option on a PointValueService.
type PointValueServiceOption func(*PointValueService)

// NewPointValueService returns a new PointValueService that uses client.
func NewPointValueService(client *Client, options ...PointValueServiceOption) (*PointValueService, error) {
	s := &PointValueService{
		client:       client,
		sortProperty: DefaultSortProperty,
		scale:        DefaultScale,
		maxPixels:    DefaultMaxPixels,
	}
	for _, option := range options {
		option(s)
	}

	if s.collection == "" {
		return nil, errNoCollection
	}
	if s.crs != "" && !isEPSG4326(s.crs) {
		pj, err := proj.NewCRSToCRS(s.crs, "epsg:4326", nil)
		if err != nil {
			return nil, errors.Wrap(err, s.crs)
		}
		s.pj = pj
	}
	return s, nil
}

// WithBands restricts the reduction to bands.
func WithBands(bands ...string) PointValueServiceOption {
	return func(s *PointValueService) {
		s.bands = bands
	}
}

// WithCollection sets the image collection asset id.
func WithCollection(collection string) PointValueServiceOption {
	return func(s *PointValueService) {
		s.collection = collection
	}
}

// WithCRS sets the CRS of the coordinates passed to
// [PointValueService.PointValueCRS]. Coordinates are in the CRS's authority
// axis order.
func WithCRS(crs string) PointValueServiceOption {
	return func(s *PointValueService) {
		s.crs = crs
	}
}

func WithMaxPixels(maxPixels float64) PointValueServiceOption {
	return func(s *PointValueService) {
		s.maxPixels = maxPixels
	}
}

// WithScale sets the nominal scale in meters of the reduction.
func WithScale(scale float64) PointValueServiceOption {
	return func(s *PointValueService) {
		s.scale = scale
	}
}

// WithSortProperty sets the property used to find the most recent image.
func WithSortProperty(sortProperty string) PointValueServiceOption {
	return func(s *PointValueService) {
		s.sortProperty = sortProperty
	}
}

// Collection returns s's collection.
func (s *PointValueService) Collection() string {
	return s.collection
}

// Expression returns the expression evaluated for latLon. An empty collection
// evaluates to an empty dictionary.
func (s *PointValueService) Expression(latLon LatLon) *Expression {
	imageCollection := LoadImageCollection(s.collection).Sort(s.sortProperty, false)
	reduced := imageCollection.First().
		Select(s.bands...).
		ReduceRegion(MeanReducer(), PointGeometry(latLon), s.scale, s.maxPixels)
	return NewExpression(IfDictionary(imageCollection.Size().GT(0), reduced, EmptyDictionary()).Value())
}

// PointValue returns the band values at latLon. It makes exactly one request.
func (s *PointValueService) PointValue(ctx context.Context, latLon LatLon) (BandValues, error) {
	result, err := s.client.ComputeValue(ctx, s.Expression(latLon))
	if err != nil {
		return nil, err
	}
	bandValues := make(BandValues)
	if string(result) == "null" {
		return bandValues, nil
	}
	if err := json.Unmarshal(result, &bandValues); err != nil {
		return nil, errors.Wrap(err, "decoding result")
	}
	return bandValues, nil
}

// PointValueCRS returns the band values at (x, y) in s's CRS.
func (s *PointValueService) PointValueCRS(ctx context.Context, x, y float64) (BandValues, error) {
	latLon, err := s.LatLon(x, y)
	if err != nil {
		return nil, err
	}
	return s.PointValue(ctx, latLon)
}

// LatLon transforms (x, y) in s's CRS to a LatLon.
func (s *PointValueService) LatLon(x, y float64) (LatLon, error) {
	if s.pj == nil {
		return LatLon{Lat: x, Lon: y}, nil
	}
	coords := [][]float64{{x, y}}
	if err := s.pj.ForwardFloat64Slices(coords); err != nil {
		return LatLon{}, errors.Wrap(err, s.crs)
	}
	// EPSG:4326's authority axis order is latitude, longitude.
	return LatLon{Lat: coords[0][0], Lon: coords[0][1]}, nil
}

func isEPSG4326(crs string) bool {
	switch strings.ToLower(crs) {
	case "epsg:4326", "wgs84":
		return true
	default:
		return false
	}
}
