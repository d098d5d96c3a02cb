// Package main is the entry point for the product API.
//
// @title Product Management
// @version 1.0
// @description RESTful API for products
//
// @host localhost:8080
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import "github.com/breno/product-api/cmd/productapi/cmd"

func main() {
	cmd.Execute()
}
