package main

import (
	"os"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
