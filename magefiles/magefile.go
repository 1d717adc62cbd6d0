//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the metakernel project using Mage.
//
// Usage:
//
//	mage build             Compile the metakernel binary to bin/
//	mage test:all          Run all tests
//	mage test:unit         Run unit tests (exclude tests/)
//	mage test:integration  Build, then run the CLI tests in tests/
//	mage test:cover        Run unit tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage vet               Run go vet
//	mage clean             Remove build artifacts
//	mage install           Install metakernel to GOPATH/bin
//	mage stats             Print Go LOC and documentation word counts
package main

const (
	binGo      = "go"
	binaryName = "metakernel"
	binaryDir  = "bin"
	cmdDir     = "./cmd/metakernel"
	coverFile  = "coverage.out"
)
