package main

import (
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-field-mesh/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
