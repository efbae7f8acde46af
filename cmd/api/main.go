package main

import (
	"os"

	"github.com/Gosee6432/MindCounselorHub-sub001/cmd/api/commands"
)

// @title Mentorhub API
// @version 1.0
// @description Supervisor matching for counseling trainees.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
