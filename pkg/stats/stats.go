// Package stats aggregates classification results across documents into a
// report that can be printed as a table or rendered as a chart.
package stats

import (
	"sort"
	"sync"

	"github.com/spanlight/spanlight/pkg/classify"
)

// Report accumulates per-category and per-language counts. It is safe for
// concurrent Add calls from a file-walking worker pool.
type Report struct {
	mu sync.Mutex

	files       int
	totalBytes  uint64
	annotations int
	candidates  int
	byCategory  map[classify.Category]int
	byLanguage  map[string]int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		byCategory: make(map[classify.Category]int),
		byLanguage: make(map[string]int),
	}
}

// Add folds one classified document into the report.
func (report *Report) Add(language string, size uint64, result classify.Result) {
	report.mu.Lock()
	defer report.mu.Unlock()

	report.files++
	report.totalBytes += size
	report.annotations += len(result.Resolved)
	report.candidates += len(result.Candidates)
	report.byLanguage[language]++

	for _, annotation := range result.Resolved {
		report.byCategory[annotation.Category]++
	}
}

// Files returns the number of documents added.
func (report *Report) Files() int {
	report.mu.Lock()
	defer report.mu.Unlock()

	return report.files
}

// Annotations returns the total resolved annotation count.
func (report *Report) Annotations() int {
	report.mu.Lock()
	defer report.mu.Unlock()

	return report.annotations
}

// categoryCount pairs a category with its count for sorted output.
type categoryCount struct {
	category classify.Category
	count    int
}

// sortedCategories returns category counts, largest first, ties by name.
func (report *Report) sortedCategories() []categoryCount {
	report.mu.Lock()
	defer report.mu.Unlock()

	out := make([]categoryCount, 0, len(report.byCategory))
	for category, count := range report.byCategory {
		out = append(out, categoryCount{category: category, count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}

		return out[i].category < out[j].category
	})

	return out
}

// sortedLanguages returns language file counts, largest first, ties by name.
func (report *Report) sortedLanguages() []languageCount {
	report.mu.Lock()
	defer report.mu.Unlock()

	out := make([]languageCount, 0, len(report.byLanguage))
	for language, count := range report.byLanguage {
		out = append(out, languageCount{language: language, count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}

		return out[i].language < out[j].language
	})

	return out
}

type languageCount struct {
	language string
	count    int
}

func (report *Report) snapshotTotals() (files int, totalBytes uint64, annotations, candidates int) {
	report.mu.Lock()
	defer report.mu.Unlock()

	return report.files, report.totalBytes, report.annotations, report.candidates
}
