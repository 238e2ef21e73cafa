package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestTranslationalGradients(t *testing.T) {
	h := []float64{1, 0}
	r := []float64{0, 1}
	tail := []float64{1, 1}
	scratch := make([]float64, 2)

	s := translational{}
	assert.InDelta(t, 0.0, s.energy(h, r, tail, scratch), 1e-12, "h + r = t is a perfect fact")

	gh, gr, gt := make([]float64, 2), make([]float64, 2), make([]float64, 2)
	s.gradients([]float64{2, 0}, r, tail, gh, gr, gt)
	assert.Equal(t, []float64{2, 0}, gh)
	assert.Equal(t, []float64{2, 0}, gr)
	assert.Equal(t, []float64{-2, 0}, gt)
}

func TestBilinearEnergy(t *testing.T) {
	scratch := make([]float64, 3)
	s := bilinear{}
	assert.InDelta(t, -6.0, s.energy([]float64{1, 1, 1}, []float64{1, 2, 3}, []float64{1, 1, 1}, scratch), 1e-12)

	gh, gr, gt := make([]float64, 3), make([]float64, 3), make([]float64, 3)
	s.gradients([]float64{1, 2, 3}, []float64{1, 1, 1}, []float64{2, 2, 2}, gh, gr, gt)
	assert.Equal(t, []float64{-2, -2, -2}, gh)
	assert.Equal(t, []float64{-2, -4, -6}, gr)
	assert.Equal(t, []float64{-1, -2, -3}, gt)
}

func TestTrainKG_UnitEntities(t *testing.T) {
	in := conferenceInput(t)
	m, err := trainKG(context.Background(), in.Graph, TransE, translational{}, smallOptions())
	require.NoError(t, err)

	km := m.(*kgModel)
	for _, v := range km.vectors {
		f := make([]float64, len(v))
		for i, x := range v {
			f[i] = float64(x)
		}
		assert.InDelta(t, 1.0, floats.Norm(f, 2), 1e-4)
	}
}

func TestTrainKG_InvalidOptions(t *testing.T) {
	in := conferenceInput(t)
	opts := smallOptions()
	opts.Dim = 0
	_, err := trainKG(context.Background(), in.Graph, TransE, translational{}, opts)
	assert.Error(t, err)
}
