package main

import (
	"github.com/ShHaWkK/SpootifyCLI/cmd"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

func main() {
	defer logger.Sync()
	cmd.Execute()
}
