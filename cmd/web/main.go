// @title           PolicyTracker API
// @version         1.0
// @description     Backend API for the PolicyTracker insurance-agent CRM.
// @host            localhost:4000
// @BasePath        /

package main

import "policytracker/internal/app"

func main() {
	app.Run()
}
