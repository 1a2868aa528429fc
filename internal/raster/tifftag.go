package raster

import (
	"bytes"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
)

const (
	tagGDALNoData = 42113
	typeASCII     = 2

	// GDAL writes the sentinel with %.18g, well under this length.
	maxNoDataLen = 64
)

// readGDALNoData scans the first IFD of a classic TIFF for the GDAL_NODATA
// tag. Non-TIFF input, BigTIFF, oversized tags and unparsable values report
// no sentinel.
func readGDALNoData(r io.ReaderAt) NoData {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return NoData{}
	}

	var order binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return NoData{}
	}
	if order.Uint16(hdr[2:4]) != 42 {
		return NoData{}
	}

	ifd := int64(order.Uint32(hdr[4:8]))
	var n [2]byte
	if _, err := r.ReadAt(n[:], ifd); err != nil {
		return NoData{}
	}
	entries := int(order.Uint16(n[:]))

	entry := make([]byte, 12)
	for i := 0; i < entries; i++ {
		if _, err := r.ReadAt(entry, ifd+2+int64(i)*12); err != nil {
			return NoData{}
		}
		if order.Uint16(entry[0:2]) != tagGDALNoData {
			continue
		}
		if order.Uint16(entry[2:4]) != typeASCII {
			return NoData{}
		}
		count := order.Uint32(entry[4:8])
		if count > maxNoDataLen {
			return NoData{}
		}
		var raw []byte
		if count <= 4 {
			raw = entry[8 : 8+count]
		} else {
			raw = make([]byte, count)
			if _, err := r.ReadAt(raw, int64(order.Uint32(entry[8:12]))); err != nil {
				return NoData{}
			}
		}
		return parseNoData(raw)
	}
	return NoData{}
}

func parseNoData(raw []byte) NoData {
	s := strings.TrimSpace(string(bytes.TrimRight(raw, "\x00")))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NoData{}
	}
	return NoDataOf(v)
}
