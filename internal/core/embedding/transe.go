package embedding

import "gonum.org/v1/gonum/floats"

// translational scores a fact by ||h + r - t||².
type translational struct{}

func (translational) energy(h, r, t, scratch []float64) float64 {
	floats.AddTo(scratch, h, r)
	floats.Sub(scratch, t)
	return floats.Dot(scratch, scratch)
}

func (translational) gradients(h, r, t, gh, gr, gt []float64) {
	floats.AddTo(gh, h, r)
	floats.Sub(gh, t)
	floats.Scale(2, gh)
	copy(gr, gh)
	floats.ScaleTo(gt, -1, gh)
}
