package core

/*------------------------------------------------------------------
 *
 * Purpose:	GPIO lines for the two external collaborators named in
 *		§1 at their contract boundary: pushbutton cancellation
 *		input and a status LED output.
 *
 * Description:	The teacher's PTT keying (ptt.go) is a cgo wrapper
 *		around libgpiod and never touches its own go.mod entry
 *		for github.com/warthog618/go-gpiocdev in pure Go. This
 *		wires that dependency up for real: one input line request
 *		with edge-detection for the pushbutton, one output line
 *		request for the LED.
 *
 *--------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO owns the pushbutton input line and LED output line used by all
// three orchestrators.
type GPIO struct {
	chip   *gpiocdev.Chip
	button *gpiocdev.Line
	led    *gpiocdev.Line

	pressed chan struct{}
}

// OpenGPIO requests the pushbutton and LED lines on the named gpiochip
// device (e.g. "gpiochip0").
func OpenGPIO(chipName string, buttonOffset, ledOffset int) (*GPIO, error) {
	var chip, err = gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("gpio: open chip %s: %w", chipName, err)
	}

	var g = &GPIO{chip: chip, pressed: make(chan struct{}, 1)}

	g.button, err = chip.RequestLine(buttonOffset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(g.onButtonEdge))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("gpio: request button line %d: %w", buttonOffset, err)
	}

	g.led, err = chip.RequestLine(ledOffset, gpiocdev.AsOutput(0))
	if err != nil {
		g.button.Close()
		chip.Close()
		return nil, fmt.Errorf("gpio: request led line %d: %w", ledOffset, err)
	}

	return g, nil
}

func (g *GPIO) onButtonEdge(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	select {
	case g.pressed <- struct{}{}:
	default:
	}
}

// Pressed reports whether the pushbutton has been asserted since the
// last call, without blocking. Orchestrator loops poll this once per
// DMA iteration per §5's cancellation contract.
func (g *GPIO) Pressed() bool {
	select {
	case <-g.pressed:
		return true
	default:
		return false
	}
}

// SetLED drives the status LED line.
func (g *GPIO) SetLED(on bool) error {
	var v = 0
	if on {
		v = 1
	}
	return g.led.SetValue(v)
}

// Close releases both lines and the chip handle.
func (g *GPIO) Close() error {
	g.button.Close()
	g.led.Close()
	return g.chip.Close()
}
