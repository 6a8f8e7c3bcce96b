package command

// ArmSequence performs the receiver unlock gesture: throttle to max, settle,
// max again, then ThrottleGo, settle. Each step is transmitted in that order.
// The settle waits block and cannot be cancelled; the receiver needs the wall
// clock time. A failed send aborts the sequence.
//
// The MAX frame is sent twice on purpose: the first opens the gesture and the
// second, after the settle, confirms it to the receiver before ThrottleGo.
func (s *State) ArmSequence() error {
	log.Notice("arming: throttle max")
	s.MaxThrottle()
	if err := s.transmit(ActionArm, s.Frame()); err != nil {
		return err
	}

	s.sleep(s.armSettle)

	s.MaxThrottle()
	if err := s.transmit(ActionArm, s.Frame()); err != nil {
		return err
	}

	s.setThrottle(ThrottleGo)
	if err := s.transmit(ActionArm, s.Frame()); err != nil {
		return err
	}

	s.sleep(s.armSettle)

	log.Noticef("armed: throttle %d", s.throttle)
	return nil
}
