package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeTagFrameStructure(t *testing.T) {
	var encoded = EncodeTagFrame([]byte{0x50, 0x82})

	for i := 0; i < tagTR1Bits; i++ {
		assert.Equal(t, 1, bitAt(encoded, i), "TR1 bit %d should be 1", i)
	}
	for i := 0; i < tagSOFLowBits; i++ {
		assert.Equal(t, 0, bitAt(encoded, tagTR1Bits+i), "SOF low bit %d should be 0", i)
	}
	for i := 0; i < tagSOFHighBits; i++ {
		assert.Equal(t, 1, bitAt(encoded, tagTR1Bits+tagSOFLowBits+i), "SOF high bit %d should be 1", i)
	}
}

func TestEncodeTagFrameByteCountInvariant(t *testing.T) {
	var body = []byte{0x50, 0x82, 0x0D, 0xE1}
	var encoded = EncodeTagFrame(body)

	var totalBits = tagTR1Bits + tagSOFLowBits + tagSOFHighBits +
		len(body)*10*tagOversample + tagTrailLow + tagTrailHigh
	var wantBytes = (totalBits+7)/8 + 2 // +2 for the finalize slop

	assert.Equal(t, wantBytes, len(encoded))
}

func TestEncodeTagFrameEmptyBody(t *testing.T) {
	var encoded = EncodeTagFrame(nil)
	assert.NotEmpty(t, encoded)
	for i := 0; i < tagTR1Bits; i++ {
		assert.Equal(t, 1, bitAt(encoded, i))
	}
}

func TestEncodeTagFrameStartStopBits(t *testing.T) {
	var encoded = EncodeTagFrame([]byte{0xFF})
	var base = tagTR1Bits + tagSOFLowBits + tagSOFHighBits

	for i := 0; i < tagOversample; i++ {
		assert.Equal(t, 0, bitAt(encoded, base+i), "start bit oversample %d should be 0", i)
	}
	var stopBase = base + tagOversample + 8*tagOversample
	for i := 0; i < tagOversample; i++ {
		assert.Equal(t, 1, bitAt(encoded, stopBase+i), "stop bit oversample %d should be 1", i)
	}
}
