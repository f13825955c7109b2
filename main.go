// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/filmmap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
