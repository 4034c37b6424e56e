package main

import (
	"fmt"
	"log"

	"github.com/kass/go-city-index/pkg/cities"
	"github.com/kass/go-city-index/pkg/geo"
	"github.com/kass/go-city-index/pkg/models"
)

func main() {
	// Raw records as they arrive from the JSON loader
	records := []map[string]any{
		{"name": "Moscow", "district": "Central", "population": 12655050, "subject": "Moscow", "coords": map[string]any{"lat": "55.7558", "lon": "37.6173"}},
		{"name": "Saint Petersburg", "district": "Northwestern", "population": 5384342, "subject": "Saint Petersburg", "coords": map[string]any{"lat": "59.9311", "lon": "30.3609"}},
		{"name": "Novosibirsk", "district": "Siberian", "population": 1620162, "subject": "Novosibirsk Oblast", "coords": map[string]any{"lat": "55.0084", "lon": "82.9357"}},
		{"name": "Yekaterinburg", "district": "Ural", "population": 1495066, "subject": "Sverdlovsk Oblast", "coords": map[string]any{"lat": "56.8389", "lon": "60.6057"}},
		{"name": "Kazan", "district": "Volga", "population": 1257391, "subject": "Tatarstan", "coords": map[string]any{"lat": "55.8304", "lon": "49.0661"}},
		{"name": "Suzdal", "district": "Central", "population": 9749, "subject": "Vladimir Oblast", "coords": map[string]any{"lat": "56.4181", "lon": "40.4508"}},
	}

	parsed, err := cities.ParseCities(records)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Parsed %d cities\n\n", len(parsed))

	// Example 1: largest cities first
	fmt.Println("=== Cities by Population (Descending) ===")
	it, err := cities.NewIterator(parsed, cities.SortBy(cities.SortByPopulation, true))
	if err != nil {
		log.Fatal(err)
	}
	for {
		city, ok := it.Next()
		if !ok {
			break
		}
		fmt.Printf("  - %s: %d\n", city.Name, city.Population)
	}

	// Example 2: same iterator, million-plus cities only
	fmt.Println("\n=== Million-Plus Cities ===")
	it.Reset()
	it.SetMinPopulation(1000000)
	for _, city := range it.Collect() {
		fmt.Printf("  - %s (%s): %d\n", city.Name, city.Subject, city.Population)
	}

	// Example 3: spatial lookups over the same city set
	fmt.Println("\n=== 3 Nearest Cities to Vladimir ===")
	index := geo.NewCityIndex()
	index.IndexCities(parsed)

	vladimir := models.Location{Lat: 56.1290, Lon: 40.4070}
	for i, city := range index.NearestNeighbors(vladimir, 3) {
		dist := geo.Distance(vladimir.Lat, vladimir.Lon, city.Lat, city.Lon)
		fmt.Printf("  %d. %s: %.1f km away\n", i+1, city.Name, dist)
	}
}
