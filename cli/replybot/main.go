package main

import (
	"os"

	replybotcmder "github.com/papercomputeco/replybot/cmd/replybot"
)

func main() {
	cmd := replybotcmder.NewReplybotCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
