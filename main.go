package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/gooath/internal/app"
)

// @title           GoOATH API
// @version         1.0
// @description     GoOATH publishes OATH TOTP/HOTP credentials of connected tokens as an object tree and runs code, copy, type and delete operations on them.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  APIToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the configured API token.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
