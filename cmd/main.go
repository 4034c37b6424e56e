package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kass/go-city-index/pkg/cities"
	"github.com/kass/go-city-index/pkg/geo"
	"github.com/kass/go-city-index/pkg/loader"
	"github.com/kass/go-city-index/pkg/models"
)

var (
	citiesFile string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "go-city-index",
	Short: "Filterable, sortable city records with spatial lookups",
	Long:  `Loads city records from a JSON file, validates them, and exposes them through a population-filtered sorted iterator plus an R-Tree spatial index.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cities in sorted, filtered order",
	Long:  `Walk the city records in the requested sort order, skipping cities below the population floor.`,
	Run:   runList,
}

var withinCmd = &cobra.Command{
	Use:   "within",
	Short: "Find cities inside a bounding box",
	Run:   runWithin,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the cities nearest to a location",
	Run:   runNearest,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for the city set",
	Run:   runStats,
}

var (
	sortField     string
	sortReverse   bool
	minPopulation int
	limit         int

	minLat, maxLat float64
	minLon, maxLon float64

	centerLat, centerLon float64
	numNeighbors         int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&citiesFile, "file", "f", "cities.json", "Cities JSON file path")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")

	listCmd.Flags().StringVarP(&sortField, "sort-by", "s", "", "Sort field: name, population, lat, lon, district, subject")
	listCmd.Flags().BoolVarP(&sortReverse, "reverse", "r", false, "Sort in descending order")
	listCmd.Flags().IntVarP(&minPopulation, "min-population", "p", 0, "Population floor; cities below it are skipped")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of cities to print (0 = all)")

	withinCmd.Flags().Float64Var(&minLat, "min-lat", 0, "Minimum latitude")
	withinCmd.Flags().Float64Var(&maxLat, "max-lat", 0, "Maximum latitude")
	withinCmd.Flags().Float64Var(&minLon, "min-lon", 0, "Minimum longitude")
	withinCmd.Flags().Float64Var(&maxLon, "max-lon", 0, "Maximum longitude")

	nearestCmd.Flags().Float64Var(&centerLat, "lat", 0, "Center latitude")
	nearestCmd.Flags().Float64Var(&centerLon, "lon", 0, "Center longitude")
	nearestCmd.Flags().IntVarP(&numNeighbors, "neighbors", "n", 10, "Number of nearest cities to find")

	rootCmd.AddCommand(listCmd, withinCmd, nearestCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadCities runs the loader collaborator and the parser back to back.
func loadCities(path string) ([]models.City, error) {
	records, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return cities.ParseCities(records)
}

func runList(cmd *cobra.Command, args []string) {
	all, err := loadCities(citiesFile)
	if err != nil {
		log.Fatalf("Failed to load cities: %v", err)
	}

	var opts []cities.Option
	if sortField != "" {
		opts = append(opts, cities.SortBy(cities.SortField(sortField), sortReverse))
	}

	it, err := cities.NewIterator(all, opts...)
	if err != nil {
		log.Fatalf("Failed to build iterator: %v", err)
	}
	it.SetMinPopulation(minPopulation)

	if outputJSON {
		printJSON(it.Collect())
		return
	}

	printed := 0
	for {
		city, ok := it.Next()
		if !ok {
			break
		}
		printCity(city)
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	fmt.Printf("\n%d of %d cities shown (population floor %d)\n", printed, it.Len(), it.MinPopulation())
}

func runWithin(cmd *cobra.Command, args []string) {
	if minLat == 0 && maxLat == 0 && minLon == 0 && maxLon == 0 {
		log.Fatal("within requires --min-lat, --max-lat, --min-lon, --max-lon")
	}

	index, err := buildIndex()
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: minLat, Lon: minLon},
		TopRight:   models.Location{Lat: maxLat, Lon: maxLon},
	}
	results, err := index.SearchBox(box)
	if err != nil {
		log.Fatalf("Box search failed: %v", err)
	}

	if outputJSON {
		printJSON(results)
		return
	}
	fmt.Printf("Found %d cities in box:\n", len(results))
	for _, city := range results {
		printCity(city)
	}
}

func runNearest(cmd *cobra.Command, args []string) {
	index, err := buildIndex()
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	center := models.Location{Lat: centerLat, Lon: centerLon}
	results := index.NearestNeighbors(center, numNeighbors)

	if outputJSON {
		printJSON(results)
		return
	}
	fmt.Printf("%d nearest cities to (%.4f, %.4f):\n", len(results), centerLat, centerLon)
	for i, city := range results {
		dist := geo.Distance(centerLat, centerLon, city.Lat, city.Lon)
		fmt.Printf("  %d. %s: %.1f km away\n", i+1, city.Name, dist)
	}
}

func runStats(cmd *cobra.Command, args []string) {
	all, err := loadCities(citiesFile)
	if err != nil {
		log.Fatalf("Failed to load cities: %v", err)
	}
	if len(all) == 0 {
		fmt.Println("No cities loaded")
		return
	}

	var total int
	smallest, largest := all[0], all[0]
	subjects := make(map[string]int)
	for _, city := range all {
		total += city.Population
		if city.Population < smallest.Population {
			smallest = city
		}
		if city.Population > largest.Population {
			largest = city
		}
		subjects[city.Subject]++
	}

	fmt.Printf("Cities: %d\n", len(all))
	fmt.Printf("Subjects: %d\n", len(subjects))
	fmt.Printf("Total population: %d\n", total)
	fmt.Printf("Average population: %d\n", total/len(all))
	fmt.Printf("Largest: %s (%d)\n", largest.Name, largest.Population)
	fmt.Printf("Smallest: %s (%d)\n", smallest.Name, smallest.Population)
}

func buildIndex() (*geo.CityIndex, error) {
	all, err := loadCities(citiesFile)
	if err != nil {
		return nil, err
	}
	index := geo.NewCityIndex()
	index.IndexCities(all)
	return index, nil
}

func printCity(city models.City) {
	fmt.Printf("  %-24s %10d  (%.4f, %.4f)  %s / %s\n",
		city.Name, city.Population, city.Lat, city.Lon, city.District, city.Subject)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	fmt.Println(string(out))
}
