package main

import (
	"context"
	"time"

	"github.com/krishg/billgate/internal/app"
)

// @title           BillGate API
// @version         1.0
// @description     BillGate provides device-trust login and one-time code verification APIs for the bill form.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  DeviceID
// @in header
// @name X-Device-ID
// @description The stable identifier of the calling device.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
