package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/raster-band-mcp/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "raster_load", "raster_summary_stats").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000. A
// panicking tool returns -32603.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.runTool(params.Name, params.Arguments)
	var pe *panicError
	if errors.As(err, &pe) {
		return s.errorResponse(req.ID, -32603, "Internal error", err.Error())
	}
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Debug("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Error("failed to marshal tool result")
		return s.errorResponse(req.ID, -32603, "Internal error", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// panicError carries a value recovered from a panicking tool handler.
type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("tool panicked: %v", e.value)
}

// runTool calls executeTool, turning a handler panic into a *panicError so
// one bad request cannot stop the server.
func (s *Server) runTool(name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.log.WithFields(logrus.Fields{"tool": name, "panic": p}).Error("tool panicked")
			result, err = nil, &panicError{value: p}
		}
	}()
	return s.executeTool(name, args)
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the raster from the cache
//  4. Calls the appropriate raster function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Raster Information
	case "raster_load":
		return s.handleRasterLoad(args)
	case "raster_evict":
		return s.handleRasterEvict(args)

	// Raster Construction
	case "raster_create":
		return s.handleRasterCreate(args)
	case "raster_add_band":
		return s.handleRasterAddBand(args)
	case "raster_set_band_nodata":
		return s.handleRasterSetBandNoData(args)

	// Band Accessors
	case "raster_band_values":
		return s.handleRasterBandValues(args)
	case "raster_band_nodata":
		return s.handleRasterBandNoData(args)
	case "raster_band_type":
		return s.handleRasterBandType(args)

	// Band Statistics
	case "raster_count":
		return s.handleRasterCount(args)
	case "raster_summary_stats":
		return s.handleRasterSummaryStats(args)
	case "raster_histogram":
		return s.handleRasterHistogram(args)
	case "raster_band_preview":
		return s.handleRasterBandPreview(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// bandArgs carries the raster reference and band selector shared by most tools.
type bandArgs struct {
	Raster string `json:"raster"`
	Band   *int   `json:"band"`
}

func (a bandArgs) band() int {
	if a.Band == nil {
		return 1
	}
	return *a.Band
}

func (s *Server) resolve(ref string) (*raster.Raster, error) {
	if ref == "" {
		return nil, fmt.Errorf("raster is required")
	}
	return s.cache.Get(ref)
}

func excludeNoData(v *bool) bool {
	return v == nil || *v
}

// handleResult is returned by tools that produce a new in-memory raster.
type handleResult struct {
	Handle string       `json:"handle"`
	Info   *raster.Info `json:"info"`
}

func (s *Server) store(r *raster.Raster) *handleResult {
	return &handleResult{Handle: s.cache.Put(r), Info: raster.Describe(r)}
}

// === Raster Information Handlers ===

type rasterRefArgs struct {
	Raster string `json:"raster"`
}

func (s *Server) handleRasterLoad(args json.RawMessage) (interface{}, error) {
	var a rasterRefArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	return raster.Describe(r), nil
}

func (s *Server) handleRasterEvict(args json.RawMessage) (interface{}, error) {
	var a rasterRefArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Raster == "" {
		return nil, fmt.Errorf("raster is required")
	}
	s.cache.Evict(a.Raster)
	return map[string]interface{}{"evicted": a.Raster}, nil
}

// === Raster Construction Handlers ===

type rasterCreateArgs struct {
	NumBands   *int     `json:"num_bands"`
	PixelType  string   `json:"pixel_type"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	UpperLeftX float64  `json:"upper_left_x"`
	UpperLeftY float64  `json:"upper_left_y"`
	ScaleX     *float64 `json:"scale_x"`
	ScaleY     *float64 `json:"scale_y"`
	SkewX      float64  `json:"skew_x"`
	SkewY      float64  `json:"skew_y"`
	SRID       int      `json:"srid"`
}

func (s *Server) handleRasterCreate(args json.RawMessage) (interface{}, error) {
	var a rasterCreateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	numBands := 1
	if a.NumBands != nil {
		numBands = *a.NumBands
	}
	pt, err := raster.ParsePixelType(a.PixelType)
	if err != nil {
		return nil, err
	}
	gt := raster.GeoTransform{
		UpperLeftX: a.UpperLeftX,
		UpperLeftY: a.UpperLeftY,
		ScaleX:     raster.PixelGrid.ScaleX,
		ScaleY:     raster.PixelGrid.ScaleY,
		SkewX:      a.SkewX,
		SkewY:      a.SkewY,
	}
	if a.ScaleX != nil {
		gt.ScaleX = *a.ScaleX
	}
	if a.ScaleY != nil {
		gt.ScaleY = *a.ScaleY
	}

	r, err := raster.MakeEmptyRaster(numBands, pt, a.Width, a.Height, gt, a.SRID)
	if err != nil {
		return nil, err
	}
	return s.store(r), nil
}

type rasterAddBandArgs struct {
	bandArgs
	Values []float64 `json:"values"`
	NoData *float64  `json:"nodata"`
}

func (s *Server) handleRasterAddBand(args json.RawMessage) (interface{}, error) {
	var a rasterAddBandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	out, err := raster.AddBandFromArray(r, a.Values, a.band(), raster.NoDataFromPtr(a.NoData))
	if err != nil {
		return nil, err
	}
	return s.store(out), nil
}

type rasterSetBandNoDataArgs struct {
	bandArgs
	NoData *float64 `json:"nodata"`
}

func (s *Server) handleRasterSetBandNoData(args json.RawMessage) (interface{}, error) {
	var a rasterSetBandNoDataArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	out, err := raster.SetBandNoDataValue(r, a.band(), raster.NoDataFromPtr(a.NoData))
	if err != nil {
		return nil, err
	}
	return s.store(out), nil
}

// === Band Accessor Handlers ===

type bandValuesResult struct {
	Band   int        `json:"band"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Values []*float64 `json:"values"`
}

func (s *Server) handleRasterBandValues(args json.RawMessage) (interface{}, error) {
	var a bandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	values, err := raster.BandAsArray(r, a.band())
	if err != nil {
		return nil, err
	}

	// NaN and infinities have no JSON form
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) && !math.IsInf(values[i], 0) {
			out[i] = &values[i]
		}
	}
	return &bandValuesResult{Band: a.band(), Width: r.Width(), Height: r.Height(), Values: out}, nil
}

func (s *Server) handleRasterBandNoData(args json.RawMessage) (interface{}, error) {
	var a bandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	nd, err := raster.BandNoDataValue(r, a.band())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"band": a.band(), "nodata": nd.Ptr()}, nil
}

func (s *Server) handleRasterBandType(args json.RawMessage) (interface{}, error) {
	var a bandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	name, err := raster.BandType(r, a.band())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"band": a.band(), "pixel_type": name}, nil
}

// === Band Statistics Handlers ===

type bandStatsArgs struct {
	bandArgs
	ExcludeNoData *bool `json:"exclude_nodata"`
}

type countResult struct {
	Band          int   `json:"band"`
	ExcludeNoData bool  `json:"exclude_nodata"`
	Count         int64 `json:"count"`
}

func (s *Server) handleRasterCount(args json.RawMessage) (interface{}, error) {
	var a bandStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	exclude := excludeNoData(a.ExcludeNoData)
	n, err := raster.Count(r, a.band(), exclude)
	if err != nil {
		return nil, err
	}
	return &countResult{Band: a.band(), ExcludeNoData: exclude, Count: n}, nil
}

type summaryStatsResult struct {
	Band          int               `json:"band"`
	ExcludeNoData bool              `json:"exclude_nodata"`
	Statistics    raster.Statistics `json:"statistics"`
}

func (s *Server) handleRasterSummaryStats(args json.RawMessage) (interface{}, error) {
	var a bandStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	exclude := excludeNoData(a.ExcludeNoData)
	st, err := raster.SummaryStats(r, a.band(), exclude)
	if err != nil {
		return nil, err
	}
	return &summaryStatsResult{Band: a.band(), ExcludeNoData: exclude, Statistics: st}, nil
}

type rasterHistogramArgs struct {
	bandStatsArgs
	Buckets int      `json:"buckets"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

func (s *Server) handleRasterHistogram(args json.RawMessage) (interface{}, error) {
	var a rasterHistogramArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Buckets == 0 {
		a.Buckets = 10
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	return raster.Histogram(r, a.band(), a.Buckets, a.Min, a.Max, excludeNoData(a.ExcludeNoData))
}

type rasterBandPreviewArgs struct {
	bandArgs
	MaxSize *int     `json:"max_size"`
	Ramp    []string `json:"ramp"`
}

func (s *Server) handleRasterBandPreview(args json.RawMessage) (interface{}, error) {
	var a rasterBandPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	maxSize := 512
	if a.MaxSize != nil {
		maxSize = *a.MaxSize
	}
	var ramp *raster.Ramp
	if len(a.Ramp) > 0 {
		if len(a.Ramp) != 2 {
			return nil, fmt.Errorf("ramp needs exactly 2 colours, got %d", len(a.Ramp))
		}
		var err error
		if ramp, err = raster.ParseRamp(a.Ramp[0], a.Ramp[1]); err != nil {
			return nil, err
		}
	}
	r, err := s.resolve(a.Raster)
	if err != nil {
		return nil, err
	}
	return raster.PreviewRamp(r, a.band(), maxSize, ramp)
}
