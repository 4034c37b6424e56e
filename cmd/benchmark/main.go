package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kass/go-city-index/pkg/cities"
	"github.com/kass/go-city-index/pkg/geo"
	"github.com/kass/go-city-index/pkg/models"
)

type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

func main() {
	var (
		numCities  = flag.Int("n", 100000, "Number of cities to generate")
		queryType  = flag.String("t", "traverse", "Query type: traverse, box, radius, nearest")
		numQueries = flag.Int("q", 1000, "Number of queries to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		// Geographic bounds for generated cities (default: roughly Russia)
		minLat = flag.Float64("min-lat", 42.0, "Minimum latitude")
		maxLat = flag.Float64("max-lat", 70.0, "Maximum latitude")
		minLon = flag.Float64("min-lon", 28.0, "Minimum longitude")
		maxLon = flag.Float64("max-lon", 170.0, "Maximum longitude")
		// Query-specific parameters
		boxSize = flag.Float64("box-size", 1.0, "Box size in degrees (for box queries)")
		radius  = flag.Float64("radius", 50.0, "Radius in km (for radius queries)")
		k       = flag.Int("k", 100, "Number of nearest neighbors")
		minPop  = flag.Int("min-pop", 500000, "Population floor (for traverse queries)")
		maxPop  = flag.Int("max-pop", 2000000, "Maximum generated population")
	)
	flag.Parse()

	log.Printf("Generating %d random cities...\n", *numCities)
	rng := rand.New(rand.NewSource(*seed))
	cityList := generateRandomCities(rng, *numCities, *minLat, *maxLat, *minLon, *maxLon, *maxPop)

	var result BenchmarkResult
	switch *queryType {
	case "traverse":
		result = benchmarkTraversal(cityList, *numQueries, *workers, *minPop)
	case "box", "radius", "nearest":
		log.Println("Building R-Tree index...")
		start := time.Now()
		index := geo.NewCityIndex()
		index.IndexCities(cityList)
		log.Printf("Index built in %v (%d cities)\n", time.Since(start), index.Size())

		switch *queryType {
		case "box":
			result = benchmarkSpatial("box", *numQueries, *workers, func(r *rand.Rand) int {
				lat := *minLat + r.Float64()*(*maxLat-*minLat-*boxSize)
				lon := *minLon + r.Float64()*(*maxLon-*minLon-*boxSize)
				box := models.BoundingBox{
					BottomLeft: models.Location{Lat: lat, Lon: lon},
					TopRight:   models.Location{Lat: lat + *boxSize, Lon: lon + *boxSize},
				}
				results, err := index.SearchBox(box)
				if err != nil {
					return 0
				}
				return len(results)
			})
		case "radius":
			result = benchmarkSpatial("radius", *numQueries, *workers, func(r *rand.Rand) int {
				center := models.Location{
					Lat: *minLat + r.Float64()*(*maxLat-*minLat),
					Lon: *minLon + r.Float64()*(*maxLon-*minLon),
				}
				results, err := index.SearchRadius(center, *radius)
				if err != nil {
					return 0
				}
				return len(results)
			})
		case "nearest":
			result = benchmarkSpatial("nearest", *numQueries, *workers, func(r *rand.Rand) int {
				center := models.Location{
					Lat: *minLat + r.Float64()*(*maxLat-*minLat),
					Lon: *minLon + r.Float64()*(*maxLon-*minLon),
				}
				return len(index.NearestNeighbors(center, *k))
			})
		}
	default:
		log.Fatalf("Unknown query type: %s", *queryType)
	}

	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
	fmt.Printf("Workers Used: %d\n", *workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
}

// benchmarkTraversal measures full filtered iterations. Each worker owns its
// own iterator since a single iterator must not be shared across traversals.
func benchmarkTraversal(cityList []models.City, numQueries, workers, minPop int) BenchmarkResult {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		durations    []time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()

			it, err := cities.NewIterator(cityList, cities.SortBy(cities.SortByPopulation, true))
			if err != nil {
				log.Fatalf("Failed to build iterator: %v", err)
			}
			it.SetMinPopulation(minPop)

			for range queryCh {
				queryStart := time.Now()
				it.Reset()
				count := 0
				for {
					if _, ok := it.Next(); !ok {
						break
					}
					count++
				}
				queryDuration := time.Since(queryStart)

				atomic.AddInt64(&totalResults, int64(count))

				mu.Lock()
				durations = append(durations, queryDuration)
				if queryDuration < minDuration {
					minDuration = queryDuration
				}
				if queryDuration > maxDuration {
					maxDuration = queryDuration
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	var totalDur time.Duration
	for _, d := range durations {
		totalDur += d
	}
	avgDuration := totalDur / time.Duration(len(durations))

	return BenchmarkResult{
		QueryType:     "traverse",
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		AvgDuration:   avgDuration,
		QueriesPerSec: float64(numQueries) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
		AvgResults:    float64(totalResults) / float64(numQueries),
	}
}

func benchmarkSpatial(queryType string, numQueries, workers int, query func(*rand.Rand) int) BenchmarkResult {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		durations    []time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			for range queryCh {
				queryStart := time.Now()
				n := query(r)
				queryDuration := time.Since(queryStart)

				atomic.AddInt64(&totalResults, int64(n))

				mu.Lock()
				durations = append(durations, queryDuration)
				if queryDuration < minDuration {
					minDuration = queryDuration
				}
				if queryDuration > maxDuration {
					maxDuration = queryDuration
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	var totalDur time.Duration
	for _, d := range durations {
		totalDur += d
	}
	avgDuration := totalDur / time.Duration(len(durations))

	return BenchmarkResult{
		QueryType:     queryType,
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		AvgDuration:   avgDuration,
		QueriesPerSec: float64(numQueries) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
		AvgResults:    float64(totalResults) / float64(numQueries),
	}
}

func generateRandomCities(rng *rand.Rand, n int, minLat, maxLat, minLon, maxLon float64, maxPop int) []models.City {
	out := make([]models.City, n)
	for i := range out {
		out[i] = models.City{
			Name:       fmt.Sprintf("city_%d", i),
			Lat:        minLat + rng.Float64()*(maxLat-minLat),
			Lon:        minLon + rng.Float64()*(maxLon-minLon),
			District:   fmt.Sprintf("district_%d", i%50),
			Population: rng.Intn(maxPop),
			Subject:    fmt.Sprintf("subject_%d", i%85),
		}
	}
	return out
}
