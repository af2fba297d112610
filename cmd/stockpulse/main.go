// Package main is the stockpulse CLI
//
// Usage:
//
//	go run ./cmd/stockpulse serve
//	go run ./cmd/stockpulse bars AAPL --timeframe 1Y
//	go run ./cmd/stockpulse snapshot AAPL MSFT
package main

import (
	"os"

	"github.com/wonny/stockpulse/cmd/stockpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
