package models

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// FormatError reports a malformed edge token passed to DecodeEdge.
type FormatError struct {
	Token string
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("models: malformed edge token %q: %v", e.Token, e.Cause)
}

func (e *FormatError) Unwrap() error { return e.Cause }

var errWrongLength = errors.New("decoded body is not 20 bytes")

// Edge is a geometric, ordered pair of Points — the endpoints of a
// straight-line segment. It supports a round-trippable encoding to an
// ASCII, case-insensitive, filename-safe token.
type Edge struct {
	From Point
	To   Point
}

var edgeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode packs the edge into a fixed 20-byte body — int16 precision
// followed by four float32 coordinates (from.lat, from.lng, to.lat,
// to.lng) — and base32-encodes it with padding stripped, yielding a
// case-insensitive, filename-safe token.
//
// When precision >= 0, coordinates are rounded to that many decimal
// places before encoding. A negative precision encodes the coordinates
// unrounded (subject only to float32 narrowing).
func (e Edge) Encode(precision int) string {
	rounded := e
	if precision >= 0 {
		rounded = Edge{
			From: Point{Lat: roundTo(e.From.Lat, precision), Lng: roundTo(e.From.Lng, precision)},
			To:   Point{Lat: roundTo(e.To.Lat, precision), Lng: roundTo(e.To.Lng, precision)},
		}
	}

	buf := make([]byte, 20)
	binary.BigEndian.PutUint16(buf[0:2], uint16(int16(precision)))
	binary.BigEndian.PutUint32(buf[2:6], math.Float32bits(float32(rounded.From.Lat)))
	binary.BigEndian.PutUint32(buf[6:10], math.Float32bits(float32(rounded.From.Lng)))
	binary.BigEndian.PutUint32(buf[10:14], math.Float32bits(float32(rounded.To.Lat)))
	binary.BigEndian.PutUint32(buf[14:18], math.Float32bits(float32(rounded.To.Lng)))
	// Bytes 18:20 are reserved/zeroed to round the body out to 20 bytes.

	return strings.ToLower(edgeEncoding.EncodeToString(buf))
}

// DecodeEdge reverses Encode. It re-pads the token to a multiple of 8
// base32 characters before decoding and fails with a *FormatError if the
// decoded body is not exactly 20 bytes.
func DecodeEdge(token string) (Edge, error) {
	upper := strings.ToUpper(token)
	if pad := len(upper) % 8; pad != 0 {
		upper += strings.Repeat("=", 8-pad)
	}

	buf, err := base32.StdEncoding.DecodeString(upper)
	if err != nil {
		return Edge{}, &FormatError{Token: token, Cause: err}
	}
	if len(buf) != 20 {
		return Edge{}, &FormatError{Token: token, Cause: errWrongLength}
	}

	return Edge{
		From: Point{
			Lat: float64(math.Float32frombits(binary.BigEndian.Uint32(buf[2:6]))),
			Lng: float64(math.Float32frombits(binary.BigEndian.Uint32(buf[6:10]))),
		},
		To: Point{
			Lat: float64(math.Float32frombits(binary.BigEndian.Uint32(buf[10:14]))),
			Lng: float64(math.Float32frombits(binary.BigEndian.Uint32(buf[14:18]))),
		},
	}, nil
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}
