package handpose

import "gonum.org/v1/gonum/stat"

// Smooth averages each landmark over the non-empty frames of the history
// window, independently per side and per landmark index.
//
// history is expected to be the snapshot taken after raw was pushed, so the
// current frame is already part of the window. A side whose history has no
// entries at all falls back to raw as its only sample.
//
// A side with no detected frame in its window comes back empty. The same
// happens when some landmark index is missing from every frame, so a side
// is always either empty or NumLandmarks long.
func Smooth(raw Frame, history History) Smoothed {
	return Smoothed{
		Left:  smoothSide(raw.Left, history.Left),
		Right: smoothSide(raw.Right, history.Right),
	}
}

func smoothSide(raw []Keypoint, window [][]Keypoint) []Keypoint {
	if len(window) == 0 {
		window = [][]Keypoint{raw}
	}

	frames := make([][]Keypoint, 0, len(window))
	for _, f := range window {
		if len(f) > 0 {
			frames = append(frames, f)
		}
	}
	if len(frames) == 0 {
		return nil
	}

	xs := make([]float64, 0, len(frames))
	ys := make([]float64, 0, len(frames))
	zs := make([]float64, 0, len(frames))

	out := make([]Keypoint, NumLandmarks)
	for i := 0; i < NumLandmarks; i++ {
		xs, ys, zs = xs[:0], ys[:0], zs[:0]
		var name string

		for _, f := range frames {
			// short detections leave this index unavailable
			if i >= len(f) {
				continue
			}
			kp := f[i]
			xs = append(xs, kp.X)
			ys = append(ys, kp.Y)
			if kp.Z != nil {
				zs = append(zs, *kp.Z)
			}
			if kp.Name != "" {
				name = kp.Name
			}
		}

		if len(xs) == 0 {
			return nil
		}

		out[i] = Keypoint{
			X:    stat.Mean(xs, nil),
			Y:    stat.Mean(ys, nil),
			Name: name,
		}
		if len(zs) > 0 {
			out[i].Z = Float(stat.Mean(zs, nil))
		}
	}

	return out
}
