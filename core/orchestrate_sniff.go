package core

/*------------------------------------------------------------------
 *
 * Purpose:	Snoop orchestrator (§4.7 "Snoop"): passively observe a
 *		conversation between an external reader and tag.
 *
 *--------------------------------------------------------------*/

import (
	"context"
	"fmt"
)

// Snoop runs §4.6's DMA loop in snoop mode: every incoming sample pair
// is fed both to the reader UART (as two hard-limited serial bits,
// REDESIGN FLAGS #2) and to the BPSK demod, with completed frames
// recorded to the trace in completion order, reader UART first on a
// tie (§5 "Ordering").
func Snoop(ctx context.Context, front FrontEnd, gpio *GPIO, wd *Watchdog, logger *Logger, cfg Config) (*TraceLog, error) {
	if err := front.SetMode(FrontEndMode(ModeHFReaderRXXCorr, Sub848KHz, SubSnoop)); err != nil {
		return nil, fmt.Errorf("snoop: set mode: %w", err)
	}

	var uart = NewReaderUARTState(cfg.ByteCntMax)
	var demod = NewBPSKDemodState(cfg.ByteCntMax)
	var trace = NewTraceLog()
	var ring = NewDMARing(cfg.RingSize)
	ring.Arm()

	for tick := 0; tick < cfg.SampleBudget; tick++ {
		select {
		case <-ctx.Done():
			return trace, ctx.Err()
		default:
		}
		if gpio != nil && gpio.Pressed() {
			logger.Info("snoop: pushbutton, exiting")
			return trace, nil
		}
		if wd != nil {
			_ = wd.Tickle()
		}
		if trace.Exceeded(cfg.TraceBound) {
			logger.Info("snoop: trace bound exceeded, exiting")
			return trace, nil
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
				logger.Error("snoop: dma overrun", "err", err)
				return trace, err
			}
			var sample = uint32(ring.swCursor)

			// Front-end contract preserved per REDESIGN FLAGS #2: the
			// snoop front end hard-limits each sample into its LSB, so
			// ci & 1 and cq & 1 are two consecutive serial bits.
			var readerOutcome1 = uart.Step(int(dci) & 1)
			if readerOutcome1 == FrameComplete {
				trace.AppendReaderFrame(sample, append([]byte{}, uart.Output()...))
				uart.Reset()
			}
			var readerOutcome2 = uart.Step(int(dcq) & 1)
			if readerOutcome2 == FrameComplete {
				trace.AppendReaderFrame(sample, append([]byte{}, uart.Output()...))
				uart.Reset()
			}

			var tagOutcome = demod.Step(int(dci), int(dcq))
			if tagOutcome == FrameComplete {
				trace.AppendTagFrame(sample, demod.metric, demod.metricN, append([]byte{}, demod.Output()...))
				demod.Reset()
			}
		}
	}

	logger.Info("snoop: sample budget reached", "traceLen", trace.Len())
	return trace, nil
}
