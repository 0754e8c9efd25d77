package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// queueSyncPreamble queues the (ci, cq) sample sequence that carries
// BPSKDemodState from UNSYNCED through to AWAITING_START_BIT, matching
// bpskSyncToStartOfFrame's transition sequence in bpsk_demod_test.go so
// both test files agree on what "locked onto a tag response" looks
// like as a sample stream.
func queueSyncPreamble(sim *FrontEndSim) {
	sim.QueueRX(100, 0) // energy kick: UNSYNCED -> PHASE_REF_TRAINING
	for i := 0; i < bpskTrainingSamples; i++ {
		sim.QueueRX(100, 0)
	}
	sim.QueueRX(-50, 0) // -> AWAITING_FALLING_EDGE_OF_SOF
	sim.QueueRX(-50, 0) // -> GOT_FALLING_EDGE_OF_SOF
	for i := 0; i < bpskSpuriousRiseMin; i++ {
		sim.QueueRX(-50, 0)
	}
	sim.QueueRX(50, 0) // -> AWAITING_START_BIT
}

// queueSymbolBit queues the two-sample symbol bpskFeedSymbol would feed
// directly to a BPSKDemodState for the given hard bit.
func queueSymbolBit(sim *FrontEndSim, hardBit int) {
	sim.QueueRX(-50, 0)
	if hardBit == 1 {
		sim.QueueRX(100, 0)
	} else {
		sim.QueueRX(-100, 0)
	}
}

// queueTagResponse queues a full BPSK-framed tag response (sync
// preamble, start/data/stop symbols per byte, ten zero symbols for
// EOF) followed by BehindByConsume quiet samples, so a single
// readCommand call consumes exactly one response: readCommand's DMA
// ring runs BehindByConsume samples behind RX() and drops whatever it
// still holds once the frame completes, which here is the quiet tail
// rather than the start of the next response.
func queueTagResponse(sim *FrontEndSim, response []byte) {
	queueSyncPreamble(sim)
	for _, b := range response {
		queueSymbolBit(sim, 1) // start
		for i := 0; i < 8; i++ {
			queueSymbolBit(sim, int(b>>uint(i))&1)
		}
		queueSymbolBit(sim, 0) // stop
	}
	for i := 0; i < 10; i++ {
		queueSymbolBit(sim, 0) // EOF
	}
	for i := 0; i < BehindByConsume; i++ {
		sim.QueueRX(0, 0) // quiet carrier after the tag's EOF
	}
}

func TestReadSRI512HappyPath(t *testing.T) {
	var sim = NewFrontEndSim()

	var initiateResp = AppendCRCB([]byte{0x11})
	var selectResp = AppendCRCB([]byte{0x11})
	var uidResp = AppendCRCB([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	var block0 = AppendCRCB([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	queueTagResponse(sim, initiateResp)
	queueTagResponse(sim, selectResp)
	queueTagResponse(sim, uidResp)
	queueTagResponse(sim, block0)

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()
	cfg.SampleBudget = 20000

	var err = ReadSRI512(context.Background(), sim, nil, nil, logger, cfg)
	// Only four responses are queued; READ_BLOCK 0x01 onward runs out
	// of samples and surfaces "no response within sample budget" —
	// expected here, since this test only checks the happy-path prefix
	// (INITIATE/SELECT/GET_UID/first block) actually completes.
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), "no response within sample budget"), err.Error())
	}
	// One TX per readCommand call: INITIATE, SELECT, GET_UID, and the
	// READ_BLOCK 0x00 that consumes the fourth queued response, plus
	// the READ_BLOCK 0x01 attempt that starts before running dry.
	assert.Len(t, sim.TXLog, 5)
}

func TestReadSRI512GetUIDShortResponseAborts(t *testing.T) {
	var sim = NewFrontEndSim()
	var initiateResp = AppendCRCB([]byte{0x11})
	var selectResp = AppendCRCB([]byte{0x11})
	var shortUIDResp = AppendCRCB([]byte{0, 0})

	queueTagResponse(sim, initiateResp)
	queueTagResponse(sim, selectResp)
	queueTagResponse(sim, shortUIDResp)

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()
	cfg.SampleBudget = 20000

	var err = ReadSRI512(context.Background(), sim, nil, nil, logger, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 10 bytes")
}

func TestReadSRI512CRCErrorContinuesToNextBlock(t *testing.T) {
	var sim = NewFrontEndSim()
	var initiateResp = AppendCRCB([]byte{0x11})
	var selectResp = AppendCRCB([]byte{0x11})
	var uidResp = AppendCRCB([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	var badBlock0 = AppendCRCB([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	badBlock0[5] ^= 0xFF // corrupt the CRC high byte
	var goodBlock1 = AppendCRCB([]byte{0x01, 0x02, 0x03, 0x04})

	queueTagResponse(sim, initiateResp)
	queueTagResponse(sim, selectResp)
	queueTagResponse(sim, uidResp)
	queueTagResponse(sim, badBlock0)
	queueTagResponse(sim, goodBlock1)

	var logBuf bytes.Buffer
	var logger = NewLogger(&logBuf, nil)
	var cfg = DefaultConfig()
	cfg.SampleBudget = 20000

	var err = ReadSRI512(context.Background(), sim, nil, nil, logger, cfg)
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), "no response within sample budget"), err.Error())
	}
	assert.True(t, strings.Contains(logBuf.String(), "CRC Error reading block"))
}
