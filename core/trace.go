package core

/*------------------------------------------------------------------
 *
 * Purpose:	Snoop trace log (§6 "Trace record format"). Appended to
 *		during snoop; analogous to the teacher's CSV-record builder
 *		in log.go but emitting the binary wire layout the spec
 *		defines instead of CSV text.
 *
 *--------------------------------------------------------------*/

import "encoding/binary"

// TraceLog is an append-only builder for the snoop trace buffer.
type TraceLog struct {
	buf []byte
}

// NewTraceLog returns an empty trace log.
func NewTraceLog() *TraceLog {
	return &TraceLog{}
}

// AppendReaderFrame records a reader-side command frame: 4 bytes
// little-endian sample timestamp, 4 zero bytes, 1 length byte, then
// the command bytes.
func (t *TraceLog) AppendReaderFrame(timestamp uint32, cmd []byte) {
	var hdr [9]byte
	binary.LittleEndian.PutUint32(hdr[0:4], timestamp)
	// hdr[4:8] are the zero bytes distinguishing a reader record.
	hdr[8] = byte(len(cmd))
	t.buf = append(t.buf, hdr[:]...)
	t.buf = append(t.buf, cmd...)
}

// AppendTagFrame records a tag-side response frame: 3 bytes little-
// endian sample timestamp, 1 byte with the high bit set holding the
// timestamp's top byte, 4 bytes little-endian metric average
// (metric/metricN, Q16.16 fixed point), 1 length byte, then the
// response bytes.
//
// The spec gives "4 bytes little-endian metric average" without
// specifying fixed vs floating representation; Q16.16 is used here to
// preserve the fractional soft-decision average without pulling in a
// float encoding, and is documented as an implementation decision.
func (t *TraceLog) AppendTagFrame(timestamp uint32, metric, metricN int64, response []byte) {
	var hdr [9]byte
	hdr[0] = byte(timestamp)
	hdr[1] = byte(timestamp >> 8)
	hdr[2] = byte(timestamp >> 16)
	hdr[3] = byte(timestamp>>24) | 0x80

	var avgQ16 uint32
	if metricN != 0 {
		avgQ16 = uint32((metric << 16) / metricN)
	}
	binary.LittleEndian.PutUint32(hdr[4:8], avgQ16)
	hdr[8] = byte(len(response))

	t.buf = append(t.buf, hdr[:]...)
	t.buf = append(t.buf, response...)
}

// Len is the current trace length in bytes.
func (t *TraceLog) Len() int {
	return len(t.buf)
}

// Bytes is the accumulated trace buffer.
func (t *TraceLog) Bytes() []byte {
	return t.buf
}

// Exceeded reports whether the trace has grown past bound, the snoop
// loop's termination condition (§4.6, §8 "Snoop trace bound").
func (t *TraceLog) Exceeded(bound int) bool {
	return len(t.buf) > bound
}
