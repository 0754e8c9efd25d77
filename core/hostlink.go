package core

/*------------------------------------------------------------------
 *
 * Purpose:	Host-facing byte channel (§6 "Operator surface", "Log
 *		channel"): accepts the orchestrator-select parameter and
 *		carries log text/records back to the host.
 *
 * Grounded on serial_port.go's open/write/get1/close shape, same
 * library (github.com/pkg/term), repurposed from "TNC's KISS serial
 * port" to the firmware's host command/log link.
 *
 *--------------------------------------------------------------*/

import (
	"fmt"

	"github.com/pkg/term"
)

// HostLink wraps a raw-mode serial/USB connection to the host.
type HostLink struct {
	fd *term.Term
}

// OpenHostLink opens devicename in raw mode at the given baud rate. A
// baud of 0 leaves the port's current speed alone, matching
// serial_port_open's behavior.
func OpenHostLink(devicename string, baud int) (*HostLink, error) {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("hostlink: open %s: %w", devicename, err)
	}

	switch baud {
	case 0:
		// leave it alone
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		if err := fd.SetSpeed(baud); err != nil {
			fd.Close()
			return nil, fmt.Errorf("hostlink: set speed %d: %w", baud, err)
		}
	default:
		return nil, fmt.Errorf("hostlink: unsupported speed %d", baud)
	}

	return &HostLink{fd: fd}, nil
}

// Write sends bytes to the host, returning an error if short.
func (h *HostLink) Write(data []byte) error {
	var n, err = h.fd.Write(data)
	if err != nil {
		return fmt.Errorf("hostlink: write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("hostlink: short write: %d of %d bytes", n, len(data))
	}
	return nil
}

// ReadByte blocks for a single byte from the host, used to receive the
// 32-bit orchestrator-select parameter one byte at a time.
func (h *HostLink) ReadByte() (byte, error) {
	var buf = make([]byte, 1)
	var n, err = h.fd.Read(buf)
	if n != 1 {
		return 0, fmt.Errorf("hostlink: read: %w", err)
	}
	return buf[0], nil
}

// ReadSelector reads the 32-bit little-endian orchestrator-select
// parameter described in §6.
func (h *HostLink) ReadSelector() (uint32, error) {
	var buf [4]byte
	for i := range buf {
		var b, err = h.ReadByte()
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// LogString sends a string-message log record (§6 "Log channel").
func (h *HostLink) LogString(msg string) error {
	return h.Write(append([]byte("MSG "+msg), '\n'))
}

// LogRecord sends a three-integer log record (§6 "Log channel").
func (h *HostLink) LogRecord(a, b, c int) error {
	return h.Write([]byte(fmt.Sprintf("REC %d %d %d\n", a, b, c)))
}

// Close releases the underlying port.
func (h *HostLink) Close() error {
	return h.fd.Close()
}
