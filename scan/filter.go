package scan

// Debounce combines two consecutive raw samples into a confirmed bitfield.
//
// A bit is confirmed when it is set in both samples (level trigger), or when
// the samples disagree and the bit was already confirmed (sample and hold).
// Glitches shorter than two scan periods are filtered out either way.
func Debounce(prevRaw, raw, prevConfirmed Code) Code {
	return prevRaw&raw | prevConfirmed&(prevRaw^raw)
}

// Released returns the falling edges between two confirmed bitfields.
func Released(prevConfirmed, confirmed Code) Code {
	return prevConfirmed & (confirmed ^ prevConfirmed)
}

// Pressed returns the rising edges between two confirmed bitfields.
func Pressed(prevConfirmed, confirmed Code) Code {
	return confirmed & (confirmed ^ prevConfirmed)
}
