package stats_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/stats"
	"github.com/spanlight/spanlight/pkg/syntax"
)

func resultWith(categories ...classify.Category) classify.Result {
	resolved := make([]classify.Annotation, 0, len(categories))
	for i, category := range categories {
		start := uint32(i * 2) //nolint:gosec // tiny test indexes
		resolved = append(resolved, classify.Annotation{
			Span:     syntax.Span{Start: start, End: start + 1},
			Category: category,
		})
	}

	return classify.Result{Resolved: resolved, Candidates: nil}
}

func TestReport_AddAccumulates(t *testing.T) {
	t.Parallel()

	report := stats.NewReport()
	report.Add("go", 100, resultWith(classify.CategoryKeyword, classify.CategoryString))
	report.Add("python", 50, resultWith(classify.CategoryKeyword))

	assert.Equal(t, 2, report.Files())
	assert.Equal(t, 3, report.Annotations())
}

func TestReport_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	report := stats.NewReport()

	const workers = 16

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			report.Add("go", 10, resultWith(classify.CategoryNumber))
		}()
	}

	wg.Wait()

	assert.Equal(t, workers, report.Files())
	assert.Equal(t, workers, report.Annotations())
}

func TestWriteTable_ContainsCountsAndShares(t *testing.T) {
	t.Parallel()

	report := stats.NewReport()
	report.Add("go", 2048, resultWith(
		classify.CategoryKeyword, classify.CategoryKeyword, classify.CategoryString))

	var buf bytes.Buffer

	require.NoError(t, report.WriteTable(&buf))

	out := buf.String()
	assert.Contains(t, out, "keyword")
	assert.Contains(t, out, "string")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "1 files")
	assert.Contains(t, out, "kB", "byte total should be humanized")

	// Largest category prints first.
	keywordIdx := strings.Index(out, "keyword")
	stringIdx := strings.Index(out, "string")
	require.GreaterOrEqual(t, keywordIdx, 0)
	require.GreaterOrEqual(t, stringIdx, 0)
	assert.Less(t, keywordIdx, stringIdx)
}

func TestWriteChart_RendersHTML(t *testing.T) {
	t.Parallel()

	report := stats.NewReport()
	report.Add("go", 10, resultWith(classify.CategoryKeyword))

	var buf bytes.Buffer

	require.NoError(t, report.WriteChart(&buf))

	out := buf.String()
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "keyword")
	assert.Contains(t, out, "Annotations by category")
}

func TestWriteTable_EmptyReport(t *testing.T) {
	t.Parallel()

	report := stats.NewReport()

	var buf bytes.Buffer

	require.NoError(t, report.WriteTable(&buf))
	assert.Contains(t, buf.String(), "0 files")
}
