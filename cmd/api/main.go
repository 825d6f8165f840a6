package main

import (
	"log"
	"os"
	"propertysim/cmd"
	"strconv"
)

func main() {
	port := 3009
	if p, err := strconv.Atoi(os.Getenv("SIM_PORT")); err == nil {
		port = p
	}
	configPath := os.Getenv("SIM_ENGINE_CONFIG")
	if configPath == "" {
		configPath = "config/engine.yaml"
	}

	apiHandler, err := cmd.InitializeDependencies(configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	apiHandler.Logger.Infow("starting api", "port", port, "commit", os.Getenv("commit_hash"))
	err = apiHandler.StartApi(port)
	if err != nil {
		apiHandler.Logger.Fatal(err)
	}
}
