package main

import (
	"log"

	"github.com/joho/godotenv"

	"Lecturas/FiberConfig"
	"Lecturas/Models"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file loaded, using environment")
	}

	Models.Connect()
	FiberConfig.FiberConfig()
}
