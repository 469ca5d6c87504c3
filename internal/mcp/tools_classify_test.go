package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestHandleClassify_ValidGoSource(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "package main\n\nfunc main() {}\n",
		Language: "go",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"language": "go"`)
	assert.Contains(t, text.Text, `"keyword"`)
	assert.Contains(t, text.Text, `"annotations"`)
}

func TestHandleClassify_DetectsLanguageFromFilename(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "def hello():\n    return 42\n",
		Filename: "script.py",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"language": "python"`)
	assert.Contains(t, text.Text, `"keyword"`)
}

func TestHandleClassify_EmptySource(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "",
		Language: "go",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "source parameter is required")
}

func TestHandleClassify_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "some code",
		Language: "brainfuck",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "unsupported language")
}

func TestHandleClassify_UndetectableLanguage(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source: "just some words with no code shape",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "language could not be detected")
}

func TestHandleClassify_SourceTooLarge(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	largeSource := make([]byte, MaxSourceInputBytes+1)
	for i := range largeSource {
		largeSource[i] = 'a'
	}

	input := ClassifyInput{
		Source:   string(largeSource),
		Language: "go",
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "exceeds maximum size")
}

func TestHandleClassify_UnknownGroup(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "package main\n",
		Language: "go",
		Groups:   []string{"nonexistent"},
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "unknown feature group")
}

func TestHandleClassify_GroupSelection(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:   "x = 1\n",
		Language: "python",
		Groups:   []string{"baseline"},
	}

	result, _, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	// The operator rule lives in the standard group, so "=" stays unclassified.
	assert.Contains(t, text.Text, `"number"`)
	assert.NotContains(t, text.Text, `"operator"`)
}

func TestHandleClassify_CandidatesOnRequest(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	input := ClassifyInput{
		Source:     "x = 1\n",
		Language:   "python",
		Candidates: true,
	}

	result, output, err := srv.handleClassify(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"candidates"`)

	classifyOut, ok := output.Data.(ClassifyOutput)
	require.True(t, ok)
	assert.NotEmpty(t, classifyOut.Candidates)
	assert.NotEmpty(t, classifyOut.Annotations)
}
