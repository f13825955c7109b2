// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, input string) ([]string, error) {
	t.Helper()

	var lines []string

	s := NewLineScanner(strings.NewReader(input))
	for s.Scan() {
		lines = append(lines, s.Text())
	}

	return lines, s.Err()
}

func TestLineScannerDropsMalformedBytes(t *testing.T) {
	input := "Film (2015) Z\xffhejiang, China\n" +
		"Caf\xc3\xa9 (2015) Paris, France\n" +
		"\xe4\xb8 (2015) truncated rune\r\n" +
		"\xc0\xaf overlong\n"

	lines, err := scanAll(t, input)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Film (2015) Zhejiang, China",
		"Café (2015) Paris, France",
		" (2015) truncated rune",
		" overlong",
	}, lines)
}

func TestLineScannerLongLines(t *testing.T) {
	long := strings.Repeat("a", bufio.MaxScanTokenSize*2)

	lines, err := scanAll(t, long+"\nshort\n")
	require.NoError(t, err)
	assert.Equal(t, []string{long, "short"}, lines)

	_, err = scanAll(t, strings.Repeat("b", MaxLineSize+1))
	require.ErrorIs(t, err, bufio.ErrTooLong)
}
