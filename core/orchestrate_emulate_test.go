package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// queueReaderFrame expands a reader-to-tag wire frame (already at 1
// bit per logical slot, as EncodeReaderFrame produces) into the
// 4x-oversampled HIPKD byte stream the emulator's RXByte path expects
// (§4.7 "every received byte is 8 input bits MSB-first"), and queues
// it on sim.
func queueReaderFrame(sim *FrontEndSim, cmd []byte) {
	var m = NewModBuffer(8)
	stuffRun(m, 1, readerIdleBits)
	stuffRun(m, 0, readerSOFBits)
	for _, b := range cmd {
		stuffRun(m, 1, readerEGTBits)
		m.StuffBit(0)
		m.StuffByteLSBFirst(b)
	}
	m.StuffBit(1)
	stuffRun(m, 0, readerEOFZeros)
	stuffRun(m, 1, readerEOFOnes)
	stuffRun(m, 1, readerTailBits)

	var nbits = m.BitLen()
	var encoded = m.Finalize()

	var bits []int
	for i := 0; i < nbits; i++ {
		var byteIdx = i / 8
		var bitIdx = 7 - (i % 8)
		var bit = int(encoded[byteIdx]>>uint(bitIdx)) & 1
		for rep := 0; rep < readerUARTOversample; rep++ {
			bits = append(bits, bit)
		}
	}
	for len(bits)%8 != 0 {
		bits = append(bits, 1) // idle pad, MSB-first packing below
	}
	for i := 0; i < len(bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | byte(bits[i+j])
		}
		sim.QueueRXByte(b)
	}
}

func TestEmulateTagAnswersKnownQuery(t *testing.T) {
	var sim = NewFrontEndSim()
	queueReaderFrame(sim, ATQBQuery)

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()
	cfg.EmulateFrames = 1

	var err = EmulateTag(context.Background(), sim, nil, nil, logger, cfg)
	assert.NoError(t, err)

	assert.Len(t, sim.TXLog, 1)
	assert.Equal(t, EncodeTagFrame(ATQBResponse), sim.TXLog[0])

	assert.Contains(t, sim.ModeLog, FrontEndMode(ModeHFSimulator, SubModulateBPSK))
}

func TestEmulateTagLogsUnmatchedFrame(t *testing.T) {
	var sim = NewFrontEndSim()
	var unknown = []byte{0x01, 0x02, 0x03}
	queueReaderFrame(sim, unknown)

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()
	cfg.EmulateFrames = 1

	var err = EmulateTag(context.Background(), sim, nil, nil, logger, cfg)
	assert.NoError(t, err)

	assert.Empty(t, sim.TXLog)
	assert.True(t, strings.Contains(logBuf.String(), "unmatched frame"))
}

func TestEmulateTagExitsOnPushbutton(t *testing.T) {
	var sim = NewFrontEndSim() // no frames queued; RXByte always empty
	var gpio = &GPIO{pressed: make(chan struct{}, 1)}
	gpio.pressed <- struct{}{}

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()

	var err = EmulateTag(context.Background(), sim, gpio, nil, logger, cfg)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(logBuf.String(), "pushbutton"))
}
