// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bufio"
	"io"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxLineSize is the longest catalog line accepted, in bytes.
const MaxLineSize = 1 << 20

// dropInvalidUTF8 removes malformed byte sequences. runes.Remove drops
// ill-formed input outright when its set contains utf8.RuneError.
func dropInvalidUTF8() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	}))
}

// NewLineScanner returns a line scanner over r that silently drops bytes
// that are not valid UTF-8.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(transform.NewReader(r, dropInvalidUTF8()))
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	return s
}
