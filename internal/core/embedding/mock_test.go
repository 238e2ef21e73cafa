package embedding

import (
	"context"
	"fmt"
)

type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
	Calls   []string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls = append(m.Calls, text)
	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

// recordingTrainer hands out static models and remembers the kinds asked for.
type recordingTrainer struct {
	kinds []Kind
	err   error
}

func (r *recordingTrainer) Train(ctx context.Context, in *TrainInput, kind Kind) (Model, error) {
	r.kinds = append(r.kinds, kind)
	if r.err != nil {
		return nil, r.err
	}
	return NewStaticModel(kind, map[string][]float32{"http://x#A": {float32(kind)}})
}
