package core

/*------------------------------------------------------------------
 *
 * Purpose:	Device configuration. Mirrors the shape of the teacher's
 *		audio_s/achan config blocks (config.go) radically narrowed
 *		to this device's scope: most of the original firmware's
 *		timing constants are compiled in, not configurable.
 *
 *--------------------------------------------------------------*/

const (
	// DefaultSampleBudget is the per-run sample ceiling from §4.6
	// ("terminates after a sample budget (e.g., 2000 samples)").
	DefaultSampleBudget = 2000

	// DefaultRingSize is the DMA ring's capacity in (ci, cq) sample
	// pairs.
	DefaultRingSize = 512

	// DefaultByteCntMax bounds a single decoded command/response.
	DefaultByteCntMax = 64

	// DefaultTraceBound is the snoop trace size ceiling (§4.6, §8).
	DefaultTraceBound = 1000

	// DefaultEmulateFrameLimit is the emulator's frame-count exit
	// condition (§4.7).
	DefaultEmulateFrameLimit = 0x30

	// BehindByOverrun is the DMA loop's fatal "blew circular buffer"
	// threshold (§4.6).
	BehindByOverrun = 100

	// BehindByConsume is the distance at which the DMA loop starts
	// draining samples (§4.6: "while behindBy > 2").
	BehindByConsume = 2
)

// Config holds the tunable parameters for a single orchestrator run.
// Zero value is not valid; use DefaultConfig.
type Config struct {
	HostDevice    string
	HostBaud      int
	GPIOChip      string
	ButtonOffset  int
	LEDOffset     int
	WatchdogPath  string
	SampleBudget  int
	RingSize      int
	ByteCntMax    int
	TraceBound    int
	EmulateFrames int
}

// DefaultConfig returns the compiled-in defaults, matching the
// original firmware's hardcoded constants.
func DefaultConfig() Config {
	return Config{
		HostDevice:    "/dev/ttyACM0",
		HostBaud:      115200,
		GPIOChip:      "gpiochip0",
		ButtonOffset:  17,
		LEDOffset:     27,
		WatchdogPath:  "/dev/watchdog",
		SampleBudget:  DefaultSampleBudget,
		RingSize:      DefaultRingSize,
		ByteCntMax:    DefaultByteCntMax,
		TraceBound:    DefaultTraceBound,
		EmulateFrames: DefaultEmulateFrameLimit,
	}
}
