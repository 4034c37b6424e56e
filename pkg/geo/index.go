// Package geo provides an R-Tree based spatial index over city records for
// bounding box, radius and nearest neighbor lookups.
package geo

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-city-index/pkg/models"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// spatialItem wraps a City for R-Tree indexing
type spatialItem struct {
	city models.City
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// CityIndex is a thread-safe R-Tree based index over city records
type CityIndex struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewCityIndex creates a new empty city index
func NewCityIndex() *CityIndex {
	return &CityIndex{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// IndexCities indexes a batch of cities, preparing bounding rects in
// parallel before the synchronized insert
func (g *CityIndex) IndexCities(cities []models.City) {
	if len(cities) == 0 {
		return
	}

	numCPU := runtime.NumCPU()
	spatialItems := make([]rtreego.Spatial, len(cities))
	var wg sync.WaitGroup

	batchSize := len(cities) / numCPU
	if batchSize < 1 {
		batchSize = 1
		numCPU = len(cities)
	}

	for i := 0; i < numCPU && i*batchSize < len(cities); i++ {
		wg.Add(1)
		start := i * batchSize
		end := start + batchSize
		if i == numCPU-1 || end > len(cities) {
			end = len(cities)
		}

		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				city := cities[j]
				rtPoint := rtreego.Point{city.Lat, city.Lon}
				rect := rtPoint.ToRect(tolerance)
				spatialItems[j] = &spatialItem{city: city, rect: rect}
			}
		}(start, end)
	}

	wg.Wait()

	// Insert items into the tree (this part must be synchronized)
	g.mu.Lock()
	defer g.mu.Unlock()

	count := int64(0)
	for _, item := range spatialItems {
		if item != nil {
			g.tree.Insert(item)
			count++
		}
	}
	g.itemCount.Add(count)
}

// SearchBox returns all cities within the given bounding box
func (g *CityIndex) SearchBox(box models.BoundingBox) ([]models.City, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bottomLeft := rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon}
	rectSize := []float64{
		box.TopRight.Lat - box.BottomLeft.Lat,
		box.TopRight.Lon - box.BottomLeft.Lon,
	}

	bounds, err := rtreego.NewRect(bottomLeft, rectSize)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	// The tolerance rects can intersect the box without the city itself
	// being inside it, so verify each hit
	found := make([]models.City, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		if item.city.Lat >= box.BottomLeft.Lat && item.city.Lat <= box.TopRight.Lat &&
			item.city.Lon >= box.BottomLeft.Lon && item.city.Lon <= box.TopRight.Lon {
			found = append(found, item.city)
		}
	}

	return found, nil
}

// SearchRadius returns all cities within the given radius (in km) from the
// center location
func (g *CityIndex) SearchRadius(center models.Location, radiusKm float64) ([]models.City, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Convert radius to degrees (approximation)
	deg := (radiusKm / earthRadius) * (180 / math.Pi)

	bounds, err := rtreego.NewRect(
		rtreego.Point{center.Lat - deg, center.Lon - deg},
		[]float64{2 * deg, 2 * deg},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	// Filter by actual distance
	found := make([]models.City, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		if Distance(center.Lat, center.Lon, item.city.Lat, item.city.Lon) <= radiusKm {
			found = append(found, item.city)
		}
	}

	return found, nil
}

// NearestNeighbors returns the N nearest cities to the given location
func (g *CityIndex) NearestNeighbors(loc models.Location, n int) []models.City {
	g.mu.RLock()
	defer g.mu.RUnlock()

	queryPoint := rtreego.Point{loc.Lat, loc.Lon}
	results := g.tree.NearestNeighbors(n, queryPoint)

	found := make([]models.City, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialItem); ok {
			found = append(found, item.city)
		}
	}

	return found
}

// Size returns the number of cities in the index
func (g *CityIndex) Size() int64 {
	return g.itemCount.Load()
}

// Clear removes all cities from the index
func (g *CityIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.itemCount.Store(0)
}

// Distance calculates the haversine distance between two lat/lon points in
// kilometers
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
