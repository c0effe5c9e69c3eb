package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "ytassist"}

	root.AddCommand(serveCMD(), migrateCMD(), sweepCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
