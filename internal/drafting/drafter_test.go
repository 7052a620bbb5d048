package drafting

import (
	"context"
	"errors"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

type scriptedCaller struct {
	replies []string
	err     error
	prompts []string
}

func (c *scriptedCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

func sampleScores() Scores {
	return Scores{
		Subject: report.Subject{Name: "Asha Rao", Department: "Finance"},
		Stages: []StageScore{
			{Stage: "Honeymoon", Score: 2.1, ScorePercentage: 30},
			{Stage: "Self-Introspection", Score: 3.4, ScorePercentage: 70,
				SubStages: []SubStageScore{{SubStage: "Reflection", Score: 3.8}}},
		},
	}
}

const goodReply = "```json\n" + `{
	"overview": {"text": ["Asha is **steady**."]},
	"interpretation": {"distribution": [
		{"stage": "Honeymoon", "scorePercentage": 30},
		{"stage": "Self-Introspection", "scorePercentage": 70}
	]},
	"conclusion": {"text": "Keep going."}
}` + "\n```"

func TestDraftParsesFencedReply(t *testing.T) {
	caller := &scriptedCaller{replies: []string{goodReply}}
	model, err := NewDrafter(caller).Draft(context.Background(), sampleScores())
	require.NoError(t, err)

	assert.Equal(t, []string{"Asha is steady."}, model.Overview.Text)
	main, ok := model.Interpretation.MainStage()
	require.True(t, ok)
	assert.Equal(t, "Self-Introspection", main.Stage)

	require.Len(t, caller.prompts, 1)
	assert.Contains(t, caller.prompts[0], `"stage": "Self-Introspection"`)
	assert.Contains(t, caller.prompts[0], `"actionPlan"`)
}

func TestDraftRetriesOnceWithFeedback(t *testing.T) {
	caller := &scriptedCaller{replies: []string{"not json", goodReply}}
	model, err := NewDrafter(caller).Draft(context.Background(), sampleScores())
	require.NoError(t, err)
	require.NotNil(t, model)

	require.Len(t, caller.prompts, 2)
	assert.NotContains(t, caller.prompts[0], "previous response was rejected")
	assert.Contains(t, caller.prompts[1], "previous response was rejected")
}

func TestDraftGivesUpAfterSecondBadReply(t *testing.T) {
	missingStage := `{"interpretation": {"distribution": [{"stage": "Honeymoon", "scorePercentage": 30}]}}`
	caller := &scriptedCaller{replies: []string{"", missingStage}}
	_, err := NewDrafter(caller).Draft(context.Background(), sampleScores())

	require.ErrorIs(t, err, ErrInvalidReply)
	assert.Contains(t, err.Error(), "Self-Introspection")
	assert.Len(t, caller.prompts, 2)
}

func TestDraftRejectsInvalidModel(t *testing.T) {
	bad := `{"interpretation": {"distribution": [{"stage": "Honeymoon", "scorePercentage": 130}, {"stage": "Self-Introspection"}]}}`
	caller := &scriptedCaller{replies: []string{bad, bad}}
	_, err := NewDrafter(caller).Draft(context.Background(), sampleScores())

	require.ErrorIs(t, err, ErrInvalidReply)
	assert.ErrorIs(t, err, report.ErrInvalidModel)
}

func TestDraftTransportErrorIsNotRetried(t *testing.T) {
	caller := &scriptedCaller{err: errors.New("status code: 500")}
	_, err := NewDrafter(caller).Draft(context.Background(), sampleScores())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidReply)
	assert.Len(t, caller.prompts, 1)
}

func TestDraftValidatesScores(t *testing.T) {
	caller := &scriptedCaller{}
	d := NewDrafter(caller)

	_, err := d.Draft(context.Background(), Scores{})
	require.Error(t, err)

	_, err = d.Draft(context.Background(), Scores{Stages: []StageScore{{Stage: "A", ScorePercentage: -1}}})
	require.Error(t, err)
	assert.Empty(t, caller.prompts)
}

type fakeMessager struct {
	params anthropic.MessageNewParams
	reply  *anthropic.Message
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.reply, nil
}

func TestAnthropicCallerJoinsTextBlocks(t *testing.T) {
	fake := &fakeMessager{reply: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: `{"overview":`},
		{Type: "thinking"},
		{Type: "text", Text: `{"text":[]}}`},
	}}}
	orig := newAnthropicClient
	newAnthropicClient = func(string) AnthropicMessager { return fake }
	t.Cleanup(func() { newAnthropicClient = orig })
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	caller, err := NewAnthropicCallerFromEnv(0)
	require.NoError(t, err)
	out, err := caller.GenerateJSON(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, `{"overview":{"text":[]}}`, out)
	assert.Equal(t, int64(DefaultMaxTokens), fake.params.MaxTokens)
}

func TestNewAnthropicCallerRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "  ")
	_, err := NewAnthropicCallerFromEnv(100)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ANTHROPIC_API_KEY"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`  {"a":1} `))
}
