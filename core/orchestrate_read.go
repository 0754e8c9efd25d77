package core

/*------------------------------------------------------------------
 *
 * Purpose:	Read-SRI512 orchestrator (§4.7 "Read SRI512"): act as an
 *		initiator against a single SRI512-family memory tag.
 *
 * Grounded on cmd/direwolf/main.go's top-level sequencing style,
 * generalized from "send a packet, wait for ack" to "send a framed
 * command, wait for a BPSK response".
 *
 *--------------------------------------------------------------*/

import (
	"context"
	"fmt"
)

const (
	opInitiate   = 0x06
	opSelect     = 0x0E
	opGetUID     = 0x0B
	opReadBlock  = 0x08
	sriSystemBlk = 0xFF
)

// ReadSRI512 runs the reader-side command sequence against a single
// tag: INITIATE, SELECT, GET_UID, then READ_BLOCK for addresses
// 0x00..0x0F followed by the 0xFF system-area block (REDESIGN FLAGS
// #3: iteration index 0x10 is remapped to system-area address 0xFF
// and the loop terminates there — addresses 0x10..0xFE are never
// read, intentionally).
func ReadSRI512(ctx context.Context, front FrontEnd, gpio *GPIO, wd *Watchdog, logger *Logger, cfg Config) error {
	var demod = NewBPSKDemodState(cfg.ByteCntMax)

	var initiateResp, err = readCommand(ctx, front, gpio, wd, demod, cfg, []byte{opInitiate, 0x00})
	if err != nil {
		return fmt.Errorf("read: INITIATE: %w", err)
	}
	if len(initiateResp) != 3 {
		return fmt.Errorf("read: INITIATE: expected 3 bytes, got %d", len(initiateResp))
	}
	if !ValidateCRCB(initiateResp) {
		logger.Warn("read: INITIATE CRC error")
	}
	var uid = initiateResp[0]

	var selectResp, err2 = readCommand(ctx, front, gpio, wd, demod, cfg, []byte{opSelect, uid})
	if err2 != nil {
		return fmt.Errorf("read: SELECT: %w", err2)
	}
	if len(selectResp) != 3 {
		return fmt.Errorf("read: SELECT: expected 3 bytes, got %d", len(selectResp))
	}
	if selectResp[0] != uid || !ValidateCRCB(selectResp) {
		return fmt.Errorf("read: SELECT: echoed uid/CRC mismatch")
	}

	var uidResp, err3 = readCommand(ctx, front, gpio, wd, demod, cfg, []byte{opGetUID})
	if err3 != nil {
		return fmt.Errorf("read: GET_UID: %w", err3)
	}
	if len(uidResp) != 10 {
		return fmt.Errorf("read: GET_UID: Expected 10 bytes")
	}
	if !ValidateCRCB(uidResp) {
		logger.Warn("read: GET_UID CRC error")
	}

	for i := 0; i <= 0x10; i++ {
		if gpio != nil && gpio.Pressed() {
			logger.Info("read: pushbutton, exiting")
			return nil
		}

		var addr = byte(i)
		if i == 0x10 {
			addr = sriSystemBlk
		}

		var blockResp, err4 = readCommand(ctx, front, gpio, wd, demod, cfg, []byte{opReadBlock, addr})
		if err4 != nil {
			return fmt.Errorf("read: READ_BLOCK %#02x: %w", addr, err4)
		}
		if len(blockResp) != 6 {
			return fmt.Errorf("read: READ_BLOCK %#02x: expected 6 bytes, got %d", addr, len(blockResp))
		}
		if !ValidateCRCB(blockResp) {
			logger.Warn("read: CRC Error reading block!", "addr", int(addr))
			continue
		}

		var contents = uint32(blockResp[0]) | uint32(blockResp[1])<<8 | uint32(blockResp[2])<<16 | uint32(blockResp[3])<<24
		var crc = uint16(blockResp[4])<<8 | uint16(blockResp[5])
		logger.Record("read: block", int(addr), int(contents), int(crc))
	}

	return nil
}

// readCommand frames cmd, transmits it, then captures the tag's BPSK
// response up to cfg.SampleBudget samples, draining them through a DMA
// ring per §4.6 rather than consuming front.RX() directly.
func readCommand(ctx context.Context, front FrontEnd, gpio *GPIO, wd *Watchdog, demod *BPSKDemodState, cfg Config, cmd []byte) ([]byte, error) {
	var framed = AppendCRCB(cmd)
	if err := front.SetMode(FrontEndMode(ModeHFReaderTX)); err != nil {
		return nil, fmt.Errorf("set tx mode: %w", err)
	}
	if err := front.TX(EncodeReaderFrame(framed)); err != nil {
		return nil, fmt.Errorf("tx: %w", err)
	}
	if err := front.SetMode(FrontEndMode(ModeHFReaderRXXCorr, Sub848KHz)); err != nil {
		return nil, fmt.Errorf("set rx mode: %w", err)
	}

	demod.Reset()
	var ring = NewDMARing(cfg.RingSize)
	ring.Arm()

	for i := 0; i < cfg.SampleBudget; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if gpio != nil && gpio.Pressed() {
			return nil, fmt.Errorf("pushbutton")
		}
		if wd != nil {
			_ = wd.Tickle()
		}

		var ci, cq, ok = front.RX()
		if ok {
			ring.Push(ci, cq)
		}

		// Drain while genuinely falling behind (§4.6 "while behindBy >
		// 2"); also drain down to empty on an idle tick so a producer
		// that has gone quiet doesn't strand the last couple of
		// buffered samples below the watermark forever.
		for ring.BehindBy() > BehindByConsume || (!ok && ring.BehindBy() > 0) {
			var dci, dcq, err = ring.Consume()
			if err != nil {
				return nil, fmt.Errorf("dma: %w", err)
			}
			var outcome = demod.Step(int(dci), int(dcq))
			if outcome == FrameComplete {
				return append([]byte{}, demod.Output()...), nil
			}
		}
	}

	return nil, fmt.Errorf("no response within sample budget")
}
