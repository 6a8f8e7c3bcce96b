package command

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/op/go-logging"

	"github.com/radio-control/rclink/internal/config"
	"github.com/radio-control/rclink/internal/link"
)

var log = logging.MustGetLogger("command")

// NeutralFrame is the first frame sent on every link: throttle at minimum,
// sticks centered.
const NeutralFrame = "1000, 1500, 1500, 1500"

// Audit action names.
const (
	ActionEstablish = "establish"
	ActionSend      = "send"
	ActionArm       = "arm"
)

// State owns the four RC axes of one link and the port they are sent on.
// It is not safe for concurrent use.
type State struct {
	transport link.Transport
	address   string
	port      link.Port

	steps     config.StepConfig
	armSettle time.Duration
	sleep     func(time.Duration)
	recorder  FrameRecorder

	throttle Axis
	roll     Axis
	pitch    Axis
	yaw      Axis

	// Sub-unit remainders left by proportional deltas. Any other write to
	// the axis discards its remainder.
	throttleFrac float64
	rollFrac     float64
	pitchFrac    float64
	yawFrac      float64

	released bool
}

// Option customizes a State at establishment.
type Option func(*State)

// WithSleeper replaces time.Sleep for the settle delays.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(s *State) {
		s.sleep = sleep
	}
}

// WithRecorder reports every transmitted frame to r.
func WithRecorder(r FrameRecorder) Option {
	return func(s *State) {
		s.recorder = r
	}
}

// Establish opens the link at cfg.Link.Address and sends NeutralFrame before
// returning. On any failure the port is closed and no State is returned.
//
// The caller must Release the State on every exit path; skipping Release
// skips the receiver fail-safe.
func Establish(tr link.Transport, cfg *config.Config, opts ...Option) (*State, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &State{
		transport: tr,
		address:   cfg.Link.Address,
		steps:     cfg.Steps,
		armSettle: cfg.Timing.ArmSettle,
		sleep:     time.Sleep,
		throttle:  MinValue,
		roll:      MidValue,
		pitch:     MidValue,
		yaw:       MidValue,
	}
	for _, opt := range opts {
		opt(s)
	}

	port, err := tr.Open(s.address)
	if err != nil {
		err = link.Unavailable(s.address, err)
		s.record(ActionEstablish, NeutralFrame, err)
		return nil, err
	}
	s.port = port

	// Opening the port resets the microcontroller
	s.sleep(cfg.Link.OpenSettle)

	if err := s.transmit(ActionEstablish, NeutralFrame); err != nil {
		if cerr := port.Close(); cerr != nil {
			log.Warningf("failed to close %s after neutral frame error: %v", s.address, cerr)
		}
		return nil, err
	}

	log.Infof("link established on %s", s.address)
	return s, nil
}

// Throttle returns the current throttle value.
func (s *State) Throttle() Axis { return s.throttle }

// Roll returns the current roll value.
func (s *State) Roll() Axis { return s.roll }

// Pitch returns the current pitch value.
func (s *State) Pitch() Axis { return s.pitch }

// Yaw returns the current yaw value.
func (s *State) Yaw() Axis { return s.yaw }

// Address returns the link address.
func (s *State) Address() string { return s.address }

// DeltaRoll moves roll one default step in d.
func (s *State) DeltaRoll(d RollDirection) { s.DeltaRollBy(d, s.steps.Roll) }

// DeltaRollBy moves roll by step in d. Unknown directions and steps below 1
// are ignored; steps above MaxStep saturate.
func (s *State) DeltaRollBy(d RollDirection, step int) {
	s.roll = applyStep(s.roll, &s.rollFrac, d.sign(), step, "roll", int(d))
}

// DeltaPitch moves pitch one default step in d.
func (s *State) DeltaPitch(d PitchDirection) { s.DeltaPitchBy(d, s.steps.Pitch) }

// DeltaPitchBy moves pitch by step in d, with the same step rules as
// DeltaRollBy.
func (s *State) DeltaPitchBy(d PitchDirection, step int) {
	s.pitch = applyStep(s.pitch, &s.pitchFrac, d.sign(), step, "pitch", int(d))
}

// DeltaYaw moves yaw one default step in d.
func (s *State) DeltaYaw(d YawDirection) { s.DeltaYawBy(d, s.steps.Yaw) }

// DeltaYawBy moves yaw by step in d, with the same step rules as DeltaRollBy.
func (s *State) DeltaYawBy(d YawDirection, step int) {
	s.yaw = applyStep(s.yaw, &s.yawFrac, d.sign(), step, "yaw", int(d))
}

// DeltaThrust moves throttle one default step in d.
func (s *State) DeltaThrust(d ThrustDirection) { s.DeltaThrustBy(d, s.steps.Throttle) }

// DeltaThrustBy moves throttle by step in d. ThrustMid sets throttle to
// MidValue regardless of step. Otherwise the step rules of DeltaRollBy apply.
func (s *State) DeltaThrustBy(d ThrustDirection, step int) {
	if d == ThrustMid {
		s.throttle, s.throttleFrac = MidValue, 0
		return
	}
	s.throttle = applyStep(s.throttle, &s.throttleFrac, d.sign(), step, "thrust", int(d))
}

func applyStep(cur Axis, frac *float64, sign, step int, axis string, raw int) Axis {
	if sign == 0 {
		log.Debugf("ignoring %s direction %d", axis, raw)
		return cur
	}
	if step < 1 {
		log.Warningf("ignoring %s step %d", axis, step)
		return cur
	}
	*frac = 0
	return Clamp(int(cur) + sign*min(step, MaxStep))
}

// DeltaRollRelative moves roll by gain times the default roll step.
// Fractions of a unit carry over to the next relative delta, so repeated
// small gains still move the axis.
func (s *State) DeltaRollRelative(gain float64) {
	s.roll = applyGain(s.roll, &s.rollFrac, gain, s.steps.Roll)
}

// DeltaPitchRelative moves pitch by gain times the default pitch step.
func (s *State) DeltaPitchRelative(gain float64) {
	s.pitch = applyGain(s.pitch, &s.pitchFrac, gain, s.steps.Pitch)
}

// DeltaYawRelative moves yaw by gain times the default yaw step.
func (s *State) DeltaYawRelative(gain float64) {
	s.yaw = applyGain(s.yaw, &s.yawFrac, gain, s.steps.Yaw)
}

// DeltaThrustRelative moves throttle by gain times the default throttle step.
func (s *State) DeltaThrustRelative(gain float64) {
	s.throttle = applyGain(s.throttle, &s.throttleFrac, gain, s.steps.Throttle)
}

func applyGain(cur Axis, frac *float64, gain float64, step int) Axis {
	exact := float64(cur) + *frac + gain*float64(step)
	if math.IsNaN(exact) {
		return cur
	}
	exact = clampFloat(exact)
	next := fromFloat(exact, cur)
	*frac = exact - float64(next)
	return next
}

// SetRoll sets roll from a stick position in [-1, 1].
func (s *State) SetRoll(unit float64) { s.roll, s.rollFrac = MapUnit(unit), 0 }

// SetPitch sets pitch from a stick position in [-1, 1].
func (s *State) SetPitch(unit float64) { s.pitch, s.pitchFrac = MapUnit(unit), 0 }

// SetYaw sets yaw from a stick position in [-1, 1].
func (s *State) SetYaw(unit float64) { s.yaw, s.yawFrac = MapUnit(unit), 0 }

// SetThrust sets throttle from a stick position in [-1, 1].
func (s *State) SetThrust(unit float64) { s.setThrottle(MapUnit(unit)) }

// ResetInputs returns every axis to the disarmed posture.
func (s *State) ResetInputs() {
	s.setThrottle(MinValue)
	s.ResetRotation()
}

// ResetRotation centers roll, pitch and yaw. Throttle is untouched.
func (s *State) ResetRotation() {
	s.roll, s.rollFrac = MidValue, 0
	s.pitch, s.pitchFrac = MidValue, 0
	s.yaw, s.yawFrac = MidValue, 0
}

// LevelThrottle sets throttle to MidValue.
func (s *State) LevelThrottle() { s.setThrottle(MidValue) }

// MaxThrottle sets throttle to MaxValue.
func (s *State) MaxThrottle() { s.setThrottle(MaxValue) }

func (s *State) setThrottle(v Axis) {
	s.throttle, s.throttleFrac = v, 0
}

// Frame formats the current axes as "T, R, P, Y".
func (s *State) Frame() string {
	return fmt.Sprintf("%d, %d, %d, %d", s.throttle, s.roll, s.pitch, s.yaw)
}

// Values formats the current axes for display.
func (s *State) Values() string {
	return fmt.Sprintf("T: %d R: %d P: %d Y: %d", s.throttle, s.roll, s.pitch, s.yaw)
}

// SendCommand writes the current frame once and returns it.
// Write failures match link.ErrTransportWrite; nothing is retried.
func (s *State) SendCommand() (string, error) {
	frame := s.Frame()
	if err := s.transmit(ActionSend, frame); err != nil {
		return "", err
	}
	return frame, nil
}

func (s *State) transmit(action, frame string) error {
	var err error
	if s.released {
		err = link.WriteFailure(s.address, link.ErrPortClosed)
	} else if _, werr := s.port.Write([]byte(frame + "\n")); werr != nil {
		err = link.WriteFailure(s.address, werr)
	}

	s.record(action, frame, err)
	if err != nil {
		log.Errorf("%s frame %q failed: %v", action, frame, err)
		return err
	}

	log.Debugf("%s frame %q", action, frame)
	return nil
}

func (s *State) record(action, frame string, err error) {
	if s.recorder != nil {
		s.recorder.RecordFrame(action, frame, err)
	}
}

// Release closes the link and then opens and immediately closes it again.
// The reopen pulses the microcontroller reset line, which powers the
// receiver down. All three steps are attempted; their errors are joined.
// Calling Release more than once is a no-op.
func (s *State) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	var errs []error
	if err := s.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}

	pulse, err := s.transport.Open(s.address)
	if err != nil {
		errs = append(errs, link.Unavailable(s.address, err))
	} else if err := pulse.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close after reset pulse: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		log.Errorf("release of %s incomplete: %v", s.address, err)
		return err
	}

	log.Infof("link %s released, receiver reset", s.address)
	return nil
}
