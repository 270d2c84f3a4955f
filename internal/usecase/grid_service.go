// Package usecase orchestrates grid operations behind the HTTP API.
package usecase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"

	"go.ngs.io/pp-grid/internal/descriptor"
	"go.ngs.io/pp-grid/internal/grid"
	"go.ngs.io/pp-grid/internal/observability"
)

// gridFileExt is the extension of descriptor files in the grid directory.
const gridFileExt = ".txt"

var (
	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when a named grid does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTooLarge is returned when a request exceeds the point limit.
	ErrTooLarge = errors.New("request too large")
)

// GridSource selects a grid by exactly one of a stored name, descriptor text
// or a descriptor key/value map.
type GridSource struct {
	Name       string         `json:"name,omitempty"`
	Descriptor string         `json:"descriptor,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// DescribeRequest asks for the summary of a grid.
type DescribeRequest struct {
	Grid GridSource `json:"grid"`
}

// GridSummary describes a built grid.
type GridSummary struct {
	Type       string   `json:"gridtype"`
	Shape      []int    `json:"shape"`
	CoordNames []string `json:"coord_names"`
	// Extent is west, north, east, south in degrees.
	Extent     Values `json:"extent"`
	Descriptor string `json:"descriptor"`
}

// NearestRequest extracts the values at the grid point nearest to Lat/Lon.
type NearestRequest struct {
	Grid GridSource `json:"grid"`
	Data FieldData  `json:"data"`
	Lat  *float64   `json:"lat"`
	Lon  *float64   `json:"lon"`
}

// BoxRequest slices data to a west, north, east, south box.
type BoxRequest struct {
	Grid GridSource `json:"grid"`
	Data FieldData  `json:"data"`
	Box  []float64  `json:"box"`
}

// BoxResponse holds the sliced data and the grid describing it.
type BoxResponse struct {
	Data FieldData   `json:"data"`
	Grid GridSummary `json:"grid"`
}

// RegridRequest interpolates data from Source onto Target.
type RegridRequest struct {
	Source GridSource `json:"source"`
	Target GridSource `json:"target"`
	Data   FieldData  `json:"data"`
	// Order is 0 for nearest neighbour and 1 for bilinear.
	Order int `json:"order"`
}

// GridService runs grid operations on request data.
type GridService struct {
	gridDir   string
	maxPoints int
	metrics   *observability.Metrics
	cache     *gridCache
}

// NewGridService creates a service reading named grids from gridDir.
// metrics may be nil.
func NewGridService(gridDir string, maxPoints int, metrics *observability.Metrics) *GridService {
	return &GridService{
		gridDir:   gridDir,
		maxPoints: maxPoints,
		metrics:   metrics,
		cache:     newGridCache(),
	}
}

// ListGrids returns the names of the descriptor files in the grid directory.
func (s *GridService) ListGrids() (names []string, err error) {
	defer s.observe("list", time.Now(), &err, 0)

	entries, err := os.ReadDir(s.gridDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read grid directory: %w", err)
	}
	names = []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), gridFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), gridFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Describe builds the requested grid and summarises it.
func (s *GridService) Describe(req DescribeRequest) (summary *GridSummary, err error) {
	defer s.observe("describe", time.Now(), &err, 0)

	g, err := s.resolve(req.Grid)
	if err != nil {
		return nil, err
	}
	return summarize(g), nil
}

// Nearest returns the values of the grid point closest to the requested
// location; the spatial dimensions are dropped from the data shape.
func (s *GridService) Nearest(req NearestRequest) (out *FieldData, err error) {
	defer s.observe("nearest", time.Now(), &err, len(req.Data.Values))

	if req.Lat == nil || req.Lon == nil {
		return nil, fmt.Errorf("%w: lat and lon are required", ErrInvalidRequest)
	}
	g, data, err := s.prepare(req.Grid, req.Data)
	if err != nil {
		return nil, err
	}
	res, err := g.NearestPoint(data, *req.Lat, *req.Lon)
	if err != nil {
		return nil, err
	}
	fd := fieldData(res)
	return &fd, nil
}

// Box slices the data to the requested longitude/latitude box.
func (s *GridService) Box(req BoxRequest) (out *BoxResponse, err error) {
	defer s.observe("lonlatbox", time.Now(), &err, len(req.Data.Values))

	g, data, err := s.prepare(req.Grid, req.Data)
	if err != nil {
		return nil, err
	}
	box := req.Box
	if len(box) == 0 {
		ext := grid.Extent(g)
		box = ext[:]
	}
	res, sub, err := g.LonLatBox(data, box)
	if err != nil {
		return nil, err
	}
	return &BoxResponse{Data: fieldData(res), Grid: *summarize(sub)}, nil
}

// Regrid interpolates the data from the source grid onto the target grid.
func (s *GridService) Regrid(req RegridRequest) (out *FieldData, err error) {
	defer s.observe("interpolate", time.Now(), &err, len(req.Data.Values))

	src, data, err := s.prepare(req.Source, req.Data)
	if err != nil {
		return nil, err
	}
	dst, err := s.resolve(req.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	spatial := 1
	for _, n := range src.Shape() {
		spatial *= n
	}
	targetPoints := 1
	for _, n := range dst.Shape() {
		targetPoints *= n
	}
	if spatial > 0 && data.Len()/spatial*targetPoints > s.maxPoints {
		return nil, fmt.Errorf("%w: result would hold %d values, limit is %d",
			ErrTooLarge, data.Len()/spatial*targetPoints, s.maxPoints)
	}

	res, err := src.Interpolate(data, dst, grid.Order(req.Order))
	if err != nil {
		return nil, err
	}
	fd := fieldData(res)
	return &fd, nil
}

func (s *GridService) prepare(src GridSource, fd FieldData) (grid.Grid, *grid.Field, error) {
	if len(fd.Values) > s.maxPoints {
		return nil, nil, fmt.Errorf("%w: data holds %d values, limit is %d", ErrTooLarge, len(fd.Values), s.maxPoints)
	}
	g, err := s.resolve(src)
	if err != nil {
		return nil, nil, err
	}
	data, err := fd.field()
	if err != nil {
		return nil, nil, err
	}
	return g, data, nil
}

// resolve builds the grid selected by src.
func (s *GridService) resolve(src GridSource) (grid.Grid, error) {
	set := 0
	for _, ok := range []bool{src.Name != "", src.Descriptor != "", len(src.Attributes) > 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: grid needs exactly one of name, descriptor or attributes", ErrInvalidRequest)
	}

	var (
		g   grid.Grid
		err error
	)
	switch {
	case src.Name != "":
		return s.named(src.Name)
	case src.Descriptor != "":
		// Text is decoded here so that it is never taken for a file path.
		g, err = grid.Build(descriptor.Decode(src.Descriptor))
	default:
		g, err = grid.Build(src.Attributes)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.GridBuilt(string(g.Type()))
	return g, nil
}

// named returns the grid stored under name, building it again only when the
// descriptor file changed since it was cached.
func (s *GridService) named(name string) (grid.Grid, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid grid name %q", ErrInvalidRequest, name)
	}
	path := filepath.Join(s.gridDir, name+gridFileExt)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: grid %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat grid %q: %w", name, err)
	}

	if g, ok := s.cache.get(name, info.ModTime()); ok {
		s.metrics.CacheLookup("hit")
		return g, nil
	}
	s.metrics.CacheLookup("miss")

	d, err := descriptor.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	g, err := grid.Build(d)
	if err != nil {
		return nil, err
	}
	s.metrics.GridBuilt(string(g.Type()))
	s.cache.put(name, info.ModTime(), g)
	return g, nil
}

func (s *GridService) observe(op string, start time.Time, err *error, points int) {
	outcome := "success"
	if *err != nil {
		outcome = "client_error"
		if !IsClientError(*err) {
			outcome = "error"
			glog.Errorf("%s failed: %v", op, *err)
		}
	}
	s.metrics.Observe(op, outcome, time.Since(start).Seconds(), points)
}

// IsClientError reports whether err was caused by the request rather than
// by the server.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest, ErrNotFound, ErrTooLarge,
		grid.ErrMissingKey, grid.ErrInvalidValue, grid.ErrInvalidType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func summarize(g grid.Grid) *GridSummary {
	ext := grid.Extent(g)
	return &GridSummary{
		Type:       string(g.Type()),
		Shape:      g.Shape(),
		CoordNames: g.CoordNames(),
		Extent:     Values(ext[:]),
		Descriptor: descriptor.Encode(g.Descriptor()),
	}
}
