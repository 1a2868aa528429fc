package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func rasterProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a raster image file, or a mem: handle returned by raster_create",
	}
}

func bandProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "1-based band index. Default 1",
		"default":     1,
		"minimum":     1,
	}
}

func excludeNoDataProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Skip pixels equal to the band's no-data value. Default true",
		"default":     true,
	}
}

func nodataProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{"number", "null"},
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Raster Information
		{
			Name:        "raster_load",
			Description: "Load a raster and return its dimensions, bands (pixel type and no-data value), geotransform and footprint.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_evict",
			Description: "Drop a raster from the server's cache. File rasters are re-read on next use; mem: handles become invalid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
				},
				"required": []string{"raster"},
			},
		},

		// Raster Construction
		{
			Name:        "raster_create",
			Description: "Create an in-memory raster whose bands are all zero and have no no-data value. Returns a mem: handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"num_bands": map[string]interface{}{
						"type":        "integer",
						"description": "Number of bands. Default 1",
						"default":     1,
					},
					"pixel_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"B", "S", "US", "I", "F", "D"},
						"description": "Pixel type code: B (unsigned 8-bit), S (signed 16-bit), US (unsigned 16-bit), I (signed 32-bit), F (32-bit float), D (64-bit float). Default D",
						"default":     "D",
					},
					"width":        map[string]interface{}{"type": "integer", "description": "Width in pixels"},
					"height":       map[string]interface{}{"type": "integer", "description": "Height in pixels"},
					"upper_left_x": map[string]interface{}{"type": "number", "description": "World X of the upper-left corner. Default 0"},
					"upper_left_y": map[string]interface{}{"type": "number", "description": "World Y of the upper-left corner. Default 0"},
					"scale_x":      map[string]interface{}{"type": "number", "description": "Pixel width in world units. Default 1"},
					"scale_y":      map[string]interface{}{"type": "number", "description": "Pixel height in world units, usually negative. Default -1"},
					"skew_x":       map[string]interface{}{"type": "number", "description": "Row skew. Default 0"},
					"skew_y":       map[string]interface{}{"type": "number", "description": "Column skew. Default 0"},
					"srid":         map[string]interface{}{"type": "integer", "description": "Spatial reference id. Default 0"},
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "raster_add_band",
			Description: "Replace a band, or append one at index num_bands+1, with the given row-major values. Returns a new mem: handle; the source raster is unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"values": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "width*height samples in row-major order",
					},
					"band":   bandProp(),
					"nodata": nodataProp("Optional no-data value for the band"),
				},
				"required": []string{"raster", "values"},
			},
		},
		{
			Name:        "raster_set_band_nodata",
			Description: "Set or clear (null) a band's no-data value. Returns a new mem: handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
					"nodata": nodataProp("No-data value, or null to clear it"),
				},
				"required": []string{"raster", "nodata"},
			},
		},

		// Band Accessors
		{
			Name:        "raster_band_values",
			Description: "Return a band's samples as a row-major array.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_band_nodata",
			Description: "Return a band's no-data value, or null when the band has none.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_band_type",
			Description: "Return a band's pixel type, e.g. UNSIGNED_8BITS or REAL_64BITS.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
				},
				"required": []string{"raster"},
			},
		},

		// Band Statistics
		{
			Name:        "raster_count",
			Description: "Count the pixels of a band, optionally excluding no-data pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster":         rasterProp(),
					"band":           bandProp(),
					"exclude_nodata": excludeNoDataProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_summary_stats",
			Description: "Compute count, sum, mean, population standard deviation, min and max of a band. Fields other than count are null when no pixel qualifies.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster":         rasterProp(),
					"band":           bandProp(),
					"exclude_nodata": excludeNoDataProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_histogram",
			Description: "Bucket a band's pixels into equal-width intervals. The range defaults to the band's min and max.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
					"buckets": map[string]interface{}{
						"type":        "integer",
						"description": "Number of buckets. Default 10",
						"default":     10,
					},
					"min":            map[string]interface{}{"type": "number", "description": "Optional lower bound of the range"},
					"max":            map[string]interface{}{"type": "number", "description": "Optional upper bound of the range (inclusive)"},
					"exclude_nodata": excludeNoDataProp(),
				},
				"required": []string{"raster"},
			},
		},
		{
			Name:        "raster_band_preview",
			Description: "Render a band as a grayscale PNG stretched between its min and max, returned as base64. No-data pixels are black.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raster": rasterProp(),
					"band":   bandProp(),
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Shrink the preview to fit this many pixels on each side. Default 512, 0 keeps native size",
						"default":     512,
					},
					"ramp": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    2,
						"maxItems":    2,
						"description": "Optional [from, to] hex colours (e.g. [\"#440154\", \"#fde725\"]) for a colour preview. No-data pixels become transparent",
					},
				},
				"required": []string{"raster"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
