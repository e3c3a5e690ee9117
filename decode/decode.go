// Package decode implements the lexical decoders SyncTeX records are built
// from (§4.B): signed integers, the optional column field, the "reuse the
// last v" shorthand, trimmed strings, and dimensioned floats.
//
// Every decoder is a pure function over a byte slice starting at the
// current scan position: it never owns or advances a cursor itself. On
// success it returns the value and how many bytes it consumed. If the
// slice ends before the decoder can tell whether it matches, it reports
// NeedMore so the caller (reader.Reader) can grow its buffer and retry the
// same call against a longer prefix of the same bytes — which is what lets
// a token straddle a buffer refill without either side tracking a rewind
// offset (see reader.Reader.ensureAvailable).
package decode

import (
	"strconv"
)

// Status is the three-way outcome of a decode attempt.
type Status int

const (
	// OK: the decoder matched and consumed bytes.
	OK Status = iota
	// NeedMore: the slice ended before the decoder could decide; grow the
	// buffer and retry the identical call.
	NeedMore
	// NotOK: the bytes at pos do not match what this decoder expects.
	NotOK
)

// MatchLiteral reports whether buf starts with lit.
func MatchLiteral(buf []byte, lit string) (consumed int, status Status) {
	n := len(lit)
	if len(buf) < n {
		if string(buf) == lit[:len(buf)] {
			return 0, NeedMore
		}
		return 0, NotOK
	}
	if string(buf[:n]) != lit {
		return 0, NotOK
	}
	return n, OK
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Int parses an optional leading ':' or ',' separator followed by a signed
// decimal integer.
func Int(buf []byte) (val int64, consumed int, status Status) {
	pos := 0
	if pos < len(buf) && (buf[pos] == ':' || buf[pos] == ',') {
		pos++
	}
	start := pos
	if pos < len(buf) && (buf[pos] == '-' || buf[pos] == '+') {
		pos++
	}
	digitsStart := pos
	for pos < len(buf) && isDigit(buf[pos]) {
		pos++
	}
	if pos == len(buf) {
		return 0, 0, NeedMore
	}
	if pos == digitsStart {
		return 0, 0, NotOK
	}
	v, err := strconv.ParseInt(string(buf[start:pos]), 10, 64)
	if err != nil {
		return 0, 0, NotOK
	}
	return v, pos, OK
}

// IntOpt parses the optional ",<int>" column field: if the next byte is a
// comma it requires an integer after it, otherwise it yields def without
// consuming anything.
func IntOpt(buf []byte, def int64) (val int64, consumed int, status Status) {
	if len(buf) == 0 {
		return 0, 0, NeedMore
	}
	if buf[0] != ',' {
		return def, 0, OK
	}
	v, n, st := Int(buf)
	if st != OK {
		return 0, 0, st
	}
	return v, n, OK
}

// IntV parses an integer, or, if buf starts with ",=", reuses lastV
// (decode_int_v, the v-coordinate repeat shorthand).
func IntV(buf []byte, lastV int64) (val int64, usedLastV bool, consumed int, status Status) {
	if len(buf) < 2 {
		if len(buf) == 1 && buf[0] == ',' {
			return 0, false, 0, NeedMore
		}
		if len(buf) == 0 {
			return 0, false, 0, NeedMore
		}
	}
	if len(buf) >= 2 && buf[0] == ',' && buf[1] == '=' {
		return lastV, true, 2, OK
	}
	v, n, st := Int(buf)
	if st != OK {
		return 0, false, 0, st
	}
	return v, false, n, OK
}

// String consumes up to (not including) the next '\n', trimming trailing
// ASCII spaces.
func String(buf []byte) (s string, consumed int, status Status) {
	for i, b := range buf {
		if b == '\n' {
			end := i
			for end > 0 && buf[end-1] == ' ' {
				end--
			}
			return string(buf[:end]), i, OK
		}
	}
	return "", 0, NeedMore
}

// unit factors, scaled points per unit, matching §4.B exactly.
const (
	spPerIn = 72.27 * 65536
	spPerPt = 65536
)

var unitFactors = map[string]float64{
	"in": 72.27 * 65536,
	"cm": 72.27 * 65536 / 2.54,
	"mm": 72.27 * 65536 / 25.4,
	"pt": 65536,
	"bp": 72.27 / 72 * 65536,
	"pc": 12 * 65536,
	"sp": 1,
	"dd": 1238.0 / 1157.0 * 65536,
	"cc": 14856.0 / 1157.0 * 65536,
	"nd": 685.0 / 642.0 * 65536,
	"nc": 1370.0 / 107.0 * 65536,
}

// Float parses a bare decimal float with no unit suffix, used for the
// postamble's Magnification field (§4.D), which — unlike X/Y Offset — is a
// plain scale factor, not a dimensioned length.
func Float(buf []byte) (val float64, consumed int, status Status) {
	pos := 0
	if pos < len(buf) && (buf[pos] == '-' || buf[pos] == '+') {
		pos++
	}
	numStart := pos
	sawDigit := false
	for pos < len(buf) && isDigit(buf[pos]) {
		pos++
		sawDigit = true
	}
	if pos < len(buf) && buf[pos] == '.' {
		pos++
		for pos < len(buf) && isDigit(buf[pos]) {
			pos++
			sawDigit = true
		}
	}
	if pos == len(buf) {
		return 0, 0, NeedMore
	}
	if !sawDigit {
		return 0, 0, NotOK
	}
	f, err := strconv.ParseFloat(string(buf[numStart:pos]), 64)
	if err != nil {
		return 0, 0, NotOK
	}
	return f, pos, OK
}

// Dimension parses a decimal float followed by one of the unit suffixes in
// §4.B and returns the value converted to scaled points.
func Dimension(buf []byte) (sp int64, consumed int, status Status) {
	pos := 0
	if pos < len(buf) && (buf[pos] == '-' || buf[pos] == '+') {
		pos++
	}
	numStart := pos
	sawDigit := false
	for pos < len(buf) && isDigit(buf[pos]) {
		pos++
		sawDigit = true
	}
	if pos < len(buf) && buf[pos] == '.' {
		pos++
		for pos < len(buf) && isDigit(buf[pos]) {
			pos++
			sawDigit = true
		}
	}
	if pos+2 > len(buf) {
		return 0, 0, NeedMore
	}
	if !sawDigit {
		return 0, 0, NotOK
	}
	numEnd := pos
	suffix := string(buf[pos : pos+2])
	factor, ok := unitFactors[suffix]
	if !ok {
		return 0, 0, NotOK
	}
	f, err := strconv.ParseFloat(string(buf[numStart:numEnd]), 64)
	if err != nil {
		return 0, 0, NotOK
	}
	return int64(f * factor), pos + 2, OK
}
