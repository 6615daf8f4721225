package handpose

// Route splits the hands reported for one frame into left and right slots
// by their reported handedness. When two hands carry the same label the
// later one wins. Hands with an unknown label are skipped. Keypoint slices
// are passed through as-is, whatever their length.
func Route(hands []Hand) Frame {
	var f Frame
	for _, h := range hands {
		switch h.Handedness {
		case Left:
			f.Left = h.Keypoints
		case Right:
			f.Right = h.Keypoints
		}
	}
	return f
}

// Duplicates returns the handedness labels reported more than once in
// hands. Callers use it to log ambiguous detections; Route itself
// resolves them silently.
func Duplicates(hands []Hand) []Handedness {
	var left, right int
	for _, h := range hands {
		switch h.Handedness {
		case Left:
			left++
		case Right:
			right++
		}
	}

	var dups []Handedness
	if left > 1 {
		dups = append(dups, Left)
	}
	if right > 1 {
		dups = append(dups, Right)
	}
	return dups
}
