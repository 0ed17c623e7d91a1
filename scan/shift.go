package scan

// composeShort handles release edges. A release that leaves every key up and
// was not already consumed by a long press is a short press: shift keys in it
// toggle the shift bit, then the code is emitted with the shift bit applied.
// Any other release clears the suppression mask.
func (s *Scanner) composeShort(released, confirmed Code) {
	if released&^s.st.Suppress != 0 && confirmed == 0 {
		s.st.Shift ^= released & s.cfg.ShiftMask
		// prevConfirmed is kept in the code even though it usually equals
		// released; multi-key releases depend on it.
		s.emit(released | s.st.Shift | s.st.PrevConfirmed)
		return
	}
	s.st.Suppress = 0
}
