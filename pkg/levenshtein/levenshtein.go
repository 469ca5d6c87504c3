// Copyright (c) 2015, Arbo von Monkiewitsch All rights reserved.
// Use of this source code is governed by a BSD-style
// license.

// Package levenshtein calculates the Levenshtein edit distance between
// strings.
package levenshtein

// Distance returns the minimum number of single-character insertions,
// deletions, and substitutions needed to transform str1 into str2.
//
// The implementation keeps one column of the edit matrix, using
// O(min(m,n)) space.
func Distance(str1, str2 string) int {
	s1 := []rune(str1)
	s2 := []rune(str2)

	// Distance is symmetric; iterate over the longer string so the
	// column stays as short as possible.
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}

	lenS1 := len(s1)
	lenS2 := len(s2)

	if lenS1 == 0 {
		return lenS2
	}

	column := make([]int, lenS1+1)
	for idx := 1; idx <= lenS1; idx++ {
		column[idx] = idx
	}

	for col := range lenS2 {
		s2Rune := s2[col]
		column[0] = col + 1
		lastdiag := col

		for row := range lenS1 {
			olddiag := column[row+1]

			cost := 0
			if s1[row] != s2Rune {
				cost = 1
			}

			column[row+1] = min(
				column[row+1]+1,
				column[row]+1,
				lastdiag+cost,
			)
			lastdiag = olddiag
		}
	}

	return column[lenS1]
}
