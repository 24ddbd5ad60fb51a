package main

import (
	"github.com/k-shtanenko/bike-rental-dashboard/internal/bootstrap"
)

// @schemes http

// @title Bike Rental Dashboard API
// @version 1.0.0
// @description Descriptive statistics over the bike-sharing rental dataset.

// @host localhost:8080
// @BasePath /api/v1

func main() {
	bootstrap.Bootstrap()
}
