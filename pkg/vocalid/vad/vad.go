// Package vad implements energy-based voice activity detection with
// hysteresis and hangover. A Detector holds per-stream counters, so every
// concurrent capture session owns its own instance; state must never leak
// between recordings.
package vad

// State is the hysteresis state of a Detector.
type State int

const (
	StateSilent State = iota
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateSilent:
		return "silent"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Defaults for 16 kHz speech with 256-sample hops.
const (
	DefaultEnergyThreshold  = 0.015
	DefaultMinSpeechFrames  = 3
	DefaultMinSilenceFrames = 10
	DefaultHangoverSeconds  = 0.5
)

// Config tunes a Detector. Zero fields take the defaults above.
type Config struct {
	EnergyThreshold  float64 // RMS level separating speech from silence
	MinSpeechFrames  int     // consecutive energetic frames to enter Speaking
	MinSilenceFrames int     // consecutive quiet frames to re-enter Silent
	HangoverSeconds  float64 // how long speech keeps being reported after the last energetic frame
}

func (c *Config) defaults() {
	if c.EnergyThreshold == 0 {
		c.EnergyThreshold = DefaultEnergyThreshold
	}
	if c.MinSpeechFrames == 0 {
		c.MinSpeechFrames = DefaultMinSpeechFrames
	}
	if c.MinSilenceFrames == 0 {
		c.MinSilenceFrames = DefaultMinSilenceFrames
	}
	if c.HangoverSeconds == 0 {
		c.HangoverSeconds = DefaultHangoverSeconds
	}
}

// Detector classifies a stream of frame energies as speech or silence.
// Transitions require runs of consecutive frames rather than single frames,
// which rejects transient noise spikes, and the hangover keeps reporting
// speech briefly after energy drops so trailing word endings are not clipped.
type Detector struct {
	cfg Config

	state        State
	speechRun    int
	silenceRun   int
	lastEnergyAt float64
	sawEnergy    bool
}

// New creates a Detector for one recording stream.
func New(cfg Config) *Detector {
	cfg.defaults()
	return &Detector{cfg: cfg}
}

// Push feeds the RMS energy of the next frame, stamped with its stream time
// in seconds, and reports whether speech is currently present. The report is
// true while the detector is in Speaking and for the hangover interval after
// the most recent energetic frame even once the state machine has reverted
// to Silent.
func (d *Detector) Push(energy, at float64) bool {
	if energy > d.cfg.EnergyThreshold {
		d.speechRun++
		d.silenceRun = 0
		d.lastEnergyAt = at
		d.sawEnergy = true
		if d.state == StateSilent && d.speechRun >= d.cfg.MinSpeechFrames {
			d.state = StateSpeaking
			d.speechRun = 0
		}
	} else {
		d.silenceRun++
		d.speechRun = 0
		if d.state == StateSpeaking && d.silenceRun >= d.cfg.MinSilenceFrames {
			d.state = StateSilent
			d.silenceRun = 0
		}
	}

	return d.speechPresent(at)
}

func (d *Detector) speechPresent(at float64) bool {
	if d.state == StateSpeaking {
		return true
	}
	return d.sawEnergy && at-d.lastEnergyAt <= d.cfg.HangoverSeconds
}

// State returns the current hysteresis state.
func (d *Detector) State() State { return d.state }

// Reset returns the detector to its initial state: Silent, zero counters, no
// last-speech timestamp. Call it at the start of every new recording stream.
func (d *Detector) Reset() {
	d.state = StateSilent
	d.speechRun = 0
	d.silenceRun = 0
	d.lastEnergyAt = 0
	d.sawEnergy = false
}
