package core

/*------------------------------------------------------------------
 *
 * Purpose:	Emulate-tag orchestrator (§4.7 "Emulate tag"): impersonate
 *		an SRI512-family tag against a real ISO 14443-B reader.
 *
 * Grounded on cmd/direwolf/main.go's top-level sequencing style
 * (configure, loop, check cancellation, exit) and recv.go's
 * channel-processing loop shape, generalized from "AX.25 frame
 * received" to "reader command frame received".
 *
 *--------------------------------------------------------------*/

import (
	"bytes"
	"context"
	"fmt"
)

// ATQBQuery is the hard-coded reader query this emulator answers to
// (§8 scenario 1).
var ATQBQuery = []byte{0x05, 0x00, 0x08, 0x39, 0x73}

// ATQBResponse is the fixed tag response; on a match it is bit-coded
// with EncodeTagFrame and streamed back (§8 scenario 1).
var ATQBResponse = []byte{0x50, 0x82, 0x0D, 0xE1, 0x74, 0x20, 0x38, 0x19, 0x22, 0x00, 0x21, 0x85, 0x5E, 0xD7}

// emulateByteBudget bounds the number of HIPKD bytes polled while
// waiting for one reader frame, standing in for the sample budget
// §4.6 applies to the I/Q path.
const emulateByteBudget = 4096

// EmulateTag runs the tag-emulation orchestrator: listen for reader
// frames on the HIPKD hard-limited byte path, answer ATQBQuery with
// ATQBResponse, and log anything else. Exits after cfg.EmulateFrames
// decoded frames or on pushbutton.
func EmulateTag(ctx context.Context, front FrontEnd, gpio *GPIO, wd *Watchdog, logger *Logger, cfg Config) error {
	if err := front.SetMode(FrontEndMode(ModeHFSimulator, SubNoModulation)); err != nil {
		return fmt.Errorf("emulate: set initial mode: %w", err)
	}

	var uart = NewReaderUARTState(cfg.ByteCntMax)
	var frameCount = 0

	for frameCount < cfg.EmulateFrames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if gpio != nil && gpio.Pressed() {
			logger.Info("emulate: pushbutton, exiting")
			return nil
		}
		if wd != nil {
			_ = wd.Tickle()
		}

		var outcome, gotFrame = emulateReadOneFrame(front, uart, cfg)
		if !gotFrame {
			if outcome {
				return nil // byte budget exhausted with no pending frame; idle exit
			}
			continue
		}

		frameCount++
		var cmd = append([]byte{}, uart.Output()...)
		uart.Reset()

		if bytes.Equal(cmd, ATQBQuery) {
			if err := front.SetMode(FrontEndMode(ModeHFSimulator, SubModulateBPSK)); err != nil {
				return fmt.Errorf("emulate: set BPSK mode: %w", err)
			}
			if err := front.TX(EncodeTagFrame(ATQBResponse)); err != nil {
				return fmt.Errorf("emulate: tx response: %w", err)
			}
			if err := front.SetMode(FrontEndMode(ModeHFSimulator, SubNoModulation)); err != nil {
				return fmt.Errorf("emulate: return to rx: %w", err)
			}
			continue
		}

		logger.Info("emulate: unmatched frame", "length", len(cmd), "crcOK", ValidateCRCB(cmd))
	}

	logger.Info("emulate: frame limit reached", "frames", frameCount)
	return nil
}

// emulateReadOneFrame polls the HIPKD byte path until a reader frame
// completes, the byte budget is exhausted, or no more bytes are
// currently available. Returns (budgetExhausted, gotFrame).
func emulateReadOneFrame(front FrontEnd, uart *ReaderUARTState, cfg Config) (bool, bool) {
	for i := 0; i < emulateByteBudget; i++ {
		var b, ok = front.RXByte()
		if !ok {
			return false, false
		}
		for bitIdx := 7; bitIdx >= 0; bitIdx-- { // MSB first, §4.7
			var bit = int(b>>uint(bitIdx)) & 1
			var outcome = uart.Step(bit)
			if outcome == FrameComplete {
				return false, true
			}
			if outcome == Overrun {
				uart.Reset()
			}
		}
	}
	return true, false
}
