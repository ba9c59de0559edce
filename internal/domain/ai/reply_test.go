package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_Structured(t *testing.T) {
	text := "Here is my assessment:\n```json\n{\"score\": 3, \"analysis\": \"disk {sda1} critical\", \"suggestions\": \"free space\", \"extra\": true}\n```\nThanks."

	reply := ParseReply(text)

	require.Equal(t, Structured, reply.Kind)
	res := reply.Normalize()
	require.NotNil(t, res.Score)
	assert.Equal(t, 3.0, *res.Score)
	assert.Equal(t, "disk {sda1} critical", *res.Analysis)
	assert.Equal(t, "free space", *res.Suggestions)
}

func TestParseReply_MissingFieldsStayUnset(t *testing.T) {
	reply := ParseReply(`{"score": 8}`)

	require.Equal(t, Structured, reply.Kind)
	res := reply.Normalize()
	assert.Equal(t, 8.0, res.ScoreValue())
	assert.Nil(t, res.Analysis)
	assert.Nil(t, res.Suggestions)
}

func TestParseReply_FirstBalancedObjectOnly(t *testing.T) {
	reply := ParseReply(`{"score": 9, "analysis": "ok"} and later {"score": 1}`)

	require.Equal(t, Structured, reply.Kind)
	assert.Equal(t, 9.0, reply.Result.ScoreValue())
}

func TestParseReply_Fallback(t *testing.T) {
	cases := map[string]string{
		"prose":         "The server looks healthy overall, CPU load is moderate.",
		"unbalanced":    "score is {\"score\": 4",
		"invalid json":  "result: {score: 4, analysis: nope}",
		"wrong type":    `{"score": "seven"}`,
		"empty":         "",
		"closing first": "} nothing {",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			reply := ParseReply(text)
			assert.Equal(t, Unstructured, reply.Kind)

			res := reply.Normalize()
			require.NotNil(t, res.Score)
			assert.Equal(t, float64(FallbackScore), *res.Score)
			assert.Equal(t, text, *res.Analysis)
			assert.Equal(t, FallbackSuggestions, *res.Suggestions)
		})
	}
}

func TestScoreValue_Unset(t *testing.T) {
	assert.Equal(t, 0.0, ScoreResult{}.ScoreValue())
}
