package main

import (
	"go-booking-assistant/core/logger"
	"go-booking-assistant/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
