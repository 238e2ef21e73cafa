package embedding

import "gonum.org/v1/gonum/floats"

// bilinear scores a fact by -Σ hᵢ·rᵢ·tᵢ, a diagonal bilinear form.
type bilinear struct{}

func (bilinear) energy(h, r, t, scratch []float64) float64 {
	floats.MulTo(scratch, h, r)
	return -floats.Dot(scratch, t)
}

func (bilinear) gradients(h, r, t, gh, gr, gt []float64) {
	floats.MulTo(gh, r, t)
	floats.Scale(-1, gh)
	floats.MulTo(gr, h, t)
	floats.Scale(-1, gr)
	floats.MulTo(gt, h, r)
	floats.Scale(-1, gt)
}
