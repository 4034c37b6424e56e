package geo

import (
	"fmt"
	"testing"

	"github.com/kass/go-city-index/pkg/models"
)

func TestIndexAndSearchBox(t *testing.T) {
	index := NewCityIndex()

	cities := []models.City{
		{Name: "Moscow", Lat: 55.7558, Lon: 37.6173, Population: 12655050},
		{Name: "Saint Petersburg", Lat: 59.9311, Lon: 30.3609, Population: 5384342},
		{Name: "Novosibirsk", Lat: 55.0084, Lon: 82.9357, Population: 1620162},
		{Name: "Yekaterinburg", Lat: 56.8389, Lon: 60.6057, Population: 1495066},
		{Name: "Vladivostok", Lat: 43.1155, Lon: 131.8855, Population: 600871},
	}

	index.IndexCities(cities)

	if index.Size() != int64(len(cities)) {
		t.Errorf("Expected %d cities, got %d", len(cities), index.Size())
	}

	// Box around European Russia
	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: 54.0, Lon: 28.0},
		TopRight:   models.Location{Lat: 61.0, Lon: 45.0},
	}
	results, err := index.SearchBox(box)
	if err != nil {
		t.Fatalf("SearchBox failed: %v", err)
	}

	// Should find Moscow and Saint Petersburg
	if len(results) != 2 {
		t.Errorf("Expected 2 results in European box, got %d", len(results))
	}
}

func TestSearchRadius(t *testing.T) {
	index := NewCityIndex()

	center := models.Location{Lat: 55.7558, Lon: 37.6173} // Moscow
	cities := []models.City{
		{Name: "Moscow", Lat: center.Lat, Lon: center.Lon},
		{Name: "Khimki", Lat: 55.8970, Lon: 37.4296},   // ~20km away
		{Name: "Tver", Lat: 56.8587, Lon: 35.9176},     // ~160km away
		{Name: "Kazan", Lat: 55.8304, Lon: 49.0661},    // ~720km away
	}

	index.IndexCities(cities)

	results, err := index.SearchRadius(center, 50.0)
	if err != nil {
		t.Fatalf("SearchRadius failed: %v", err)
	}

	// Should find Moscow and Khimki
	if len(results) != 2 {
		t.Errorf("Expected 2 results within 50km, got %d", len(results))
	}
}

func TestNearestNeighbors(t *testing.T) {
	index := NewCityIndex()

	// Create a grid of cities
	var cities []models.City
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			cities = append(cities, models.City{
				Name: fmt.Sprintf("%d,%d", i, j),
				Lat:  float64(i),
				Lon:  float64(j),
			})
		}
	}

	index.IndexCities(cities)

	nearest := index.NearestNeighbors(models.Location{Lat: 4.5, Lon: 4.5}, 4)
	if len(nearest) != 4 {
		t.Fatalf("Expected 4 neighbors, got %d", len(nearest))
	}

	// The four corners around (4.5, 4.5)
	expected := map[string]bool{"4,4": true, "4,5": true, "5,4": true, "5,5": true}
	for _, city := range nearest {
		if !expected[city.Name] {
			t.Errorf("Unexpected neighbor %s", city.Name)
		}
	}
}

func TestClear(t *testing.T) {
	index := NewCityIndex()
	index.IndexCities([]models.City{
		{Name: "Moscow", Lat: 55.7558, Lon: 37.6173},
	})

	if index.Size() != 1 {
		t.Fatalf("Expected 1 city before clear, got %d", index.Size())
	}

	index.Clear()
	if index.Size() != 0 {
		t.Errorf("Expected empty index after clear, got %d", index.Size())
	}
}

func TestIndexEmptyBatch(t *testing.T) {
	index := NewCityIndex()
	index.IndexCities(nil)

	if index.Size() != 0 {
		t.Errorf("Expected empty index, got %d", index.Size())
	}
}

func TestDistance(t *testing.T) {
	// Moscow to Saint Petersburg is roughly 634km
	dist := Distance(55.7558, 37.6173, 59.9311, 30.3609)
	if dist < 600 || dist > 670 {
		t.Errorf("Expected ~634km, got %.1f", dist)
	}

	if d := Distance(55.7558, 37.6173, 55.7558, 37.6173); d != 0 {
		t.Errorf("Expected zero distance, got %f", d)
	}
}
