package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type generatorStub struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (s *generatorStub) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if txt, ok := parts[0].(genai.Text); ok {
			s.prompt = string(txt)
		}
	}
	return s.resp, s.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestProposeJoinsTextParts(t *testing.T) {
	stub := &generatorStub{resp: textResponse(genai.Text(`[{"classId":`), genai.Text(`"c1"}]`))}
	g := &Gemini{model: stub, name: "test", logger: zap.NewNop()}

	raw, err := g.Propose(context.Background(), "build a timetable")
	require.NoError(t, err)

	assert.Equal(t, `[{"classId":"c1"}]`, raw)
	assert.Equal(t, "build a timetable", stub.prompt)
}

func TestProposeWithoutContent(t *testing.T) {
	g := &Gemini{model: &generatorStub{resp: &genai.GenerateContentResponse{}}, name: "test", logger: zap.NewNop()}

	_, err := g.Propose(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestProposeWrapsTransportError(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := &Gemini{model: &generatorStub{err: boom}, name: "test", logger: zap.NewNop()}

	_, err := g.Propose(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
}
