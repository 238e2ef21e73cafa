package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/ontoalign/internal/core/embedding"
)

type executedQuery struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	Queries    []executedQuery
	MockResult neo4j.EagerResult
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, executedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// paramsOf returns the parameters of the executed queries equal to query.
func (m *MockDriver) paramsOf(query string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, q := range m.Queries {
		if q.Query == query {
			out = append(out, q.Params)
		}
	}
	return out
}

// StaticTrainer serves fixed vectors regardless of the ontology, keyed by IRI.
type StaticTrainer struct {
	Vectors map[string][]float32
	Calls   []embedding.Kind
}

func (s *StaticTrainer) Train(ctx context.Context, in *embedding.TrainInput, kind embedding.Kind) (embedding.Model, error) {
	s.Calls = append(s.Calls, kind)
	m, err := embedding.NewStaticModel(kind, s.Vectors)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}
