package core

/*------------------------------------------------------------------
 *
 * Purpose:	Watchdog tickle (§5: "The watchdog must be tickled on
 *		every outer-loop iteration").
 *
 * Description:	Opens /dev/watchdog and issues the standard Linux
 *		WDIOC_KEEPALIVE ioctl via golang.org/x/sys/unix, the same
 *		low-level-OS-interfacing package the teacher pulls in
 *		(transitively, through go-gpiocdev/go-udev) for exactly
 *		this kind of direct kernel interface.
 *
 *--------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const wdiocKeepalive = 0x80045705 // WDIOC_KEEPALIVE

// Watchdog tickles /dev/watchdog (or an equivalent device) to prevent
// a hardware reset. A nil *os.File (via NewNoopWatchdog) is a valid
// stub for platforms or tests without the device.
type Watchdog struct {
	f *os.File
}

// OpenWatchdog opens the named watchdog device (typically
// "/dev/watchdog").
func OpenWatchdog(device string) (*Watchdog, error) {
	var f, err = os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("watchdog: open %s: %w", device, err)
	}
	return &Watchdog{f: f}, nil
}

// NewNoopWatchdog returns a Watchdog whose Tickle is a no-op, for
// platforms and tests without a real watchdog device.
func NewNoopWatchdog() *Watchdog {
	return &Watchdog{}
}

// Tickle resets the watchdog countdown. Called once per DMA loop
// iteration (§4.6, §5).
func (w *Watchdog) Tickle() error {
	if w.f == nil {
		return nil
	}
	if err := unix.IoctlSetInt(int(w.f.Fd()), wdiocKeepalive, 0); err != nil {
		return fmt.Errorf("watchdog: keepalive ioctl: %w", err)
	}
	return nil
}

// Close stops tickling and releases the device. Most watchdog drivers
// require writing 'V' before close to actually disarm; callers that
// want a real shutdown instead of a reset on exit should write that
// themselves before calling Close.
func (w *Watchdog) Close() error {
	if w.f == nil {
		return nil
	}
	return w.f.Close()
}
