package script

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/radio-control/rclink/internal/command"
)

// DefaultRegistry returns a registry holding every built-in command.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&Command{Name: "send", Usage: "send", Description: "transmit the current frame", Handle: handleSend})
	r.Register(&Command{Name: "values", Usage: "values", Description: "print the current axis values", Handle: handleValues})
	r.Register(&Command{Name: "arm", Usage: "arm", Description: "run the receiver arm sequence", Handle: handleArm})
	r.Register(&Command{Name: "reset", Usage: "reset", Description: "disarm: throttle min, sticks centered", Handle: simple((*command.State).ResetInputs)})
	r.Register(&Command{Name: "reset-rotation", Usage: "reset-rotation", Description: "center roll, pitch and yaw", Handle: simple((*command.State).ResetRotation)})
	r.Register(&Command{Name: "level", Usage: "level", Description: "throttle to mid", Handle: simple((*command.State).LevelThrottle)})
	r.Register(&Command{Name: "max", Usage: "max", Description: "throttle to max", Handle: simple((*command.State).MaxThrottle)})

	r.Register(&Command{Name: "roll", Usage: "roll left|right [step]", Description: "step roll", Handle: handleRoll})
	r.Register(&Command{Name: "pitch", Usage: "pitch forward|back [step]", Description: "step pitch", Handle: handlePitch})
	r.Register(&Command{Name: "yaw", Usage: "yaw cw|ccw [step]", Description: "step yaw", Handle: handleYaw})
	r.Register(&Command{Name: "thrust", Usage: "thrust up|down|mid [step]", Description: "step throttle", Handle: handleThrust})

	r.Register(&Command{Name: "rel", Usage: "rel roll|pitch|yaw|thrust <gain>", Description: "move an axis by gain times its step", Handle: handleRelative})
	r.Register(&Command{Name: "set", Usage: "set roll|pitch|yaw|thrust <unit>", Description: "set an axis from a stick position in [-1, 1]", Handle: handleSet})
	r.Register(&Command{Name: "sleep", Usage: "sleep <duration>", Description: "wait, e.g. sleep 200ms", Handle: handleSleep})

	return r
}

func simple(fn func(*command.State)) HandlerFunc {
	return func(ctx context.Context, st *command.State, params []string) (string, error) {
		if len(params) != 0 {
			return "", usageError("takes no arguments")
		}
		fn(st)
		return "", nil
	}
}

func handleSend(ctx context.Context, st *command.State, params []string) (string, error) {
	if len(params) != 0 {
		return "", usageError("takes no arguments")
	}
	return st.SendCommand()
}

func handleValues(ctx context.Context, st *command.State, params []string) (string, error) {
	if len(params) != 0 {
		return "", usageError("takes no arguments")
	}
	return st.Values(), nil
}

func handleArm(ctx context.Context, st *command.State, params []string) (string, error) {
	if len(params) != 0 {
		return "", usageError("takes no arguments")
	}
	if err := st.ArmSequence(); err != nil {
		return "", err
	}
	return st.Frame(), nil
}

// directional parses "<direction> [step]". ok is false for unknown directions,
// which are skipped rather than rejected.
func directional[D any](params []string, parse func(string) (D, bool)) (dir D, step int, ok bool, err error) {
	if len(params) < 1 || len(params) > 2 {
		return dir, 0, false, usageError("expects a direction and an optional step")
	}

	if len(params) == 2 {
		step, err = strconv.Atoi(params[1])
		if err != nil || step <= 0 {
			return dir, 0, false, usageError(fmt.Sprintf("invalid step %q", params[1]))
		}
		step = min(step, command.MaxStep)
	}

	dir, ok = parse(params[0])
	if !ok {
		log.Warningf("ignoring unknown direction %q", params[0])
	}
	return dir, step, ok, nil
}

func handleRoll(ctx context.Context, st *command.State, params []string) (string, error) {
	dir, step, ok, err := directional(params, command.ParseRollDirection)
	if err != nil || !ok {
		return "", err
	}
	if step == 0 {
		st.DeltaRoll(dir)
	} else {
		st.DeltaRollBy(dir, step)
	}
	return "", nil
}

func handlePitch(ctx context.Context, st *command.State, params []string) (string, error) {
	dir, step, ok, err := directional(params, command.ParsePitchDirection)
	if err != nil || !ok {
		return "", err
	}
	if step == 0 {
		st.DeltaPitch(dir)
	} else {
		st.DeltaPitchBy(dir, step)
	}
	return "", nil
}

func handleYaw(ctx context.Context, st *command.State, params []string) (string, error) {
	dir, step, ok, err := directional(params, command.ParseYawDirection)
	if err != nil || !ok {
		return "", err
	}
	if step == 0 {
		st.DeltaYaw(dir)
	} else {
		st.DeltaYawBy(dir, step)
	}
	return "", nil
}

func handleThrust(ctx context.Context, st *command.State, params []string) (string, error) {
	dir, step, ok, err := directional(params, command.ParseThrustDirection)
	if err != nil || !ok {
		return "", err
	}
	if step == 0 {
		st.DeltaThrust(dir)
	} else {
		st.DeltaThrustBy(dir, step)
	}
	return "", nil
}

// axisSetters maps axis names to a state method taking a float.
type axisSetters struct {
	roll, pitch, yaw, thrust func(*command.State, float64)
}

var relativeSetters = axisSetters{
	roll:   (*command.State).DeltaRollRelative,
	pitch:  (*command.State).DeltaPitchRelative,
	yaw:    (*command.State).DeltaYawRelative,
	thrust: (*command.State).DeltaThrustRelative,
}

var absoluteSetters = axisSetters{
	roll:   (*command.State).SetRoll,
	pitch:  (*command.State).SetPitch,
	yaw:    (*command.State).SetYaw,
	thrust: (*command.State).SetThrust,
}

func (a axisSetters) lookup(axis string) (func(*command.State, float64), bool) {
	switch axis {
	case "roll":
		return a.roll, true
	case "pitch":
		return a.pitch, true
	case "yaw":
		return a.yaw, true
	case "thrust":
		return a.thrust, true
	}
	return nil, false
}

func axisValue(setters axisSetters, st *command.State, params []string) (string, error) {
	if len(params) != 2 {
		return "", usageError("expects an axis and a value")
	}

	fn, ok := setters.lookup(params[0])
	if !ok {
		return "", usageError(fmt.Sprintf("unknown axis %q", params[0]))
	}

	v, err := strconv.ParseFloat(params[1], 64)
	if err != nil {
		return "", usageError(fmt.Sprintf("invalid value %q", params[1]))
	}

	fn(st, v)
	return "", nil
}

func handleRelative(ctx context.Context, st *command.State, params []string) (string, error) {
	return axisValue(relativeSetters, st, params)
}

func handleSet(ctx context.Context, st *command.State, params []string) (string, error) {
	return axisValue(absoluteSetters, st, params)
}

func handleSleep(ctx context.Context, st *command.State, params []string) (string, error) {
	if len(params) != 1 {
		return "", usageError("expects a duration")
	}
	d, err := time.ParseDuration(params[0])
	if err != nil || d < 0 {
		return "", usageError(fmt.Sprintf("invalid duration %q", params[0]))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", nil
	}
}
