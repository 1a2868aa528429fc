// Package server implements the MCP (Model Context Protocol) server for raster band tools.
//
// This package provides a JSON-RPC 2.0 server that exposes band accessors and
// statistics from package raster through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Raster Information:
//   - raster_load: Load a raster and get its metadata
//   - raster_evict: Drop a raster from the cache
//
// Raster Construction:
//   - raster_create: Create an empty in-memory raster
//   - raster_add_band: Replace or append a band from values
//   - raster_set_band_nodata: Set or clear a band's no-data value
//
// Band Accessors:
//   - raster_band_values: Get a band's samples
//   - raster_band_nodata: Get a band's no-data value
//   - raster_band_type: Get a band's pixel type
//
// Band Statistics:
//   - raster_count: Count pixels, optionally excluding no-data
//   - raster_summary_stats: Count, sum, mean, stddev, min and max
//   - raster_histogram: Equal-width buckets over a band
//   - raster_band_preview: Grayscale PNG of a band
//
// Every band argument is 1-based and defaults to 1. exclude_nodata defaults
// to true.
//
// # Raster Caching
//
// File rasters are cached by path. Rasters built with raster_create and the
// editing tools are cached under mem: handles; edits never modify the source
// handle. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(logrus.StandardLogger())
//	if err := srv.Run(); err != nil {
//	    logrus.Fatal(err)
//	}
package server
