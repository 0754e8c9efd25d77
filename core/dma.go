package core

/*------------------------------------------------------------------
 *
 * Purpose:	DMA ring (§3, §4.6): single-producer (hardware)/single-
 *		reader (software) ring carrying interleaved I/Q sample
 *		pairs, with a hardware-maintained cursor.
 *
 * Description:	Modeled after rrbb_t's "handle plus fixed backing
 *		array" shape (rrbb.go), restructured per §9's "DMA ring"
 *		guidance as a lock-free hardware-cursor ring rather than a
 *		queue of frame buffers: the reader must stay within
 *		ring-2 samples of the producer and explicitly rearms the
 *		"next" pointer on wrap.
 *
 *--------------------------------------------------------------*/

import "fmt"

// ErrBlownCircularBuffer is returned when the software cursor falls
// more than BehindByOverrun samples behind the hardware cursor (§4.6,
// §7 "DMA overrun").
var ErrBlownCircularBuffer = fmt.Errorf("blew circular buffer")

// DMARing is the sample ring shared between the (simulated) hardware
// producer and the software consumer. Capacity is in sample pairs, not
// bytes.
type DMARing struct {
	buf      []int8 // interleaved ci, cq; len == 2*capacity
	capacity int

	hwCursor int // samples written by the producer so far; indexed mod capacity
	swCursor int // samples consumed by the software reader so far; indexed mod capacity
	armed    bool
}

// NewDMARing allocates a ring able to hold capacity sample pairs.
func NewDMARing(capacity int) *DMARing {
	return &DMARing{
		buf:      make([]int8, capacity*2),
		capacity: capacity,
	}
}

// Arm starts the ring fresh: both cursors reset to zero. Called once
// per orchestrator entry before the DMA loop begins (§4.6 "arms a DMA
// ring into the sample buffer").
func (r *DMARing) Arm() {
	r.hwCursor = 0
	r.swCursor = 0
	r.armed = true
}

// Rearm is called on wrap to reissue the hardware "next" pointer; the
// ring itself is circular so this is a bookkeeping no-op beyond
// tracking that the hardware side has been re-armed.
func (r *DMARing) Rearm() {
	r.armed = true
}

// Push is the simulated hardware producer: writes one (ci, cq) pair at
// the current hardware cursor and advances it. Production code has no
// real DMA controller (out of scope per §1); this is exercised by
// FrontEndSim and by tests.
func (r *DMARing) Push(ci, cq int8) {
	var idx = (r.hwCursor % r.capacity) * 2
	r.buf[idx] = ci
	r.buf[idx+1] = cq
	r.hwCursor++
}

// BehindBy is the distance between the hardware cursor and the
// software cursor (§4.6). Both cursors are running totals, so the
// distance is not reduced modulo the ring size and can exceed it.
func (r *DMARing) BehindBy() int {
	var d = r.hwCursor - r.swCursor
	if d < 0 {
		d += r.capacity
	}
	return d
}

// Consume drains one sample pair at the software cursor and advances
// it. Returns ErrBlownCircularBuffer if called while already more than
// BehindByOverrun behind, per §4.6/§7.
func (r *DMARing) Consume() (ci, cq int8, err error) {
	if r.BehindBy() > BehindByOverrun {
		return 0, 0, ErrBlownCircularBuffer
	}
	var idx = (r.swCursor % r.capacity) * 2
	ci, cq = r.buf[idx], r.buf[idx+1]
	r.swCursor++
	if r.swCursor%r.capacity == 0 {
		r.Rearm()
	}
	return ci, cq, nil
}
