package scan

// trackLongPress counts stable ticks of a held level and emits long press
// events. It must run before composeShort so that the suppression mask it
// sets is seen by the release that ends the hold.
func (s *Scanner) trackLongPress(confirmed Code) {
	if confirmed == 0 || confirmed != s.st.PrevConfirmed {
		s.st.Countdown = s.cfg.PressDelay
		return
	}

	s.st.Countdown--
	if s.st.Countdown > 0 {
		return
	}

	code := confirmed | s.st.Shift
	switch {
	case confirmed&^s.cfg.SingleShotMask != 0:
		// any repeating key in the level makes the whole level repeat
		s.emit(code)
	case confirmed&s.cfg.SingleShotMask&^s.st.Suppress != 0:
		s.emit(^code & s.mask)
	}
	s.st.Countdown = s.cfg.RepeatInterval
	s.st.Suppress = confirmed
}
