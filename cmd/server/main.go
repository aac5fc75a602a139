package main

import (
	"github.com/OFFIS-RIT/scholargraph/internal/server"
	"github.com/OFFIS-RIT/scholargraph/internal/util"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnv("LOG_FORMAT") == "json",
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init()
}
