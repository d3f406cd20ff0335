package main

import "shopbe/internal/app"

// @title           shopbe auth API
// @version         1.0
// @description     Authentication backend: OTP registration, password login, refresh-token rotation, Google sign-in.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
