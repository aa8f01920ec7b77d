package main

import (
	"os"

	"dataaccess/cli"
	"dataaccess/utils"
)

func main() {
	rootCmd := cli.NewRootCmd()
	err := rootCmd.Execute()
	utils.Logger.Flush()
	if err != nil {
		os.Exit(1)
	}
}
