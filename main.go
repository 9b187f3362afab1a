package main

import (
	"os"

	"revizly/cmd"
)

// @title                       Revizly API
// @version                     1.0
// @description                 Persistence and credential service for the Revizly study chat.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
