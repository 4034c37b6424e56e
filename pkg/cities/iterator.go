package cities

import (
	"sort"

	"github.com/kass/go-city-index/pkg/models"
)

// SortField names a City attribute the iterator can order by.
type SortField string

const (
	SortByName       SortField = "name"
	SortByPopulation SortField = "population"
	SortByLat        SortField = "lat"
	SortByLon        SortField = "lon"
	SortByDistrict   SortField = "district"
	SortBySubject    SortField = "subject"
)

// comparators is the closed set of supported orderings. Sorting by anything
// outside this table is a ConfigurationError.
var comparators = map[SortField]func(a, b models.City) bool{
	SortByName:       func(a, b models.City) bool { return a.Name < b.Name },
	SortByPopulation: func(a, b models.City) bool { return a.Population < b.Population },
	SortByLat:        func(a, b models.City) bool { return a.Lat < b.Lat },
	SortByLon:        func(a, b models.City) bool { return a.Lon < b.Lon },
	SortByDistrict:   func(a, b models.City) bool { return a.District < b.District },
	SortBySubject:    func(a, b models.City) bool { return a.Subject < b.Subject },
}

// Option configures an Iterator at construction time.
type Option func(*config)

type config struct {
	sortField SortField
	reverse   bool
	sorted    bool
}

// SortBy orders the sequence by the given field, once, at construction.
// The sort is stable: cities with equal keys keep their input order.
func SortBy(field SortField, reverse bool) Option {
	return func(c *config) {
		c.sortField = field
		c.reverse = reverse
		c.sorted = true
	}
}

// Iterator walks a City sequence in order, skipping cities whose population
// is below the current floor. The floor may be changed at any time, even
// mid-traversal; every Next call reads the floor's current value.
//
// One cursor per instance: an Iterator must not be shared across concurrent
// traversals.
type Iterator struct {
	cities        []models.City
	cursor        int
	minPopulation int
}

// NewIterator builds an iterator over an already-validated City sequence.
// The slice is copied so the optional sort never reorders the caller's data.
// The sort field is checked against the supported set regardless of input
// length, so an unknown field fails even for an empty sequence.
func NewIterator(cities []models.City, opts ...Option) (*Iterator, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	owned := make([]models.City, len(cities))
	copy(owned, cities)

	if cfg.sorted {
		less, ok := comparators[cfg.sortField]
		if !ok {
			return nil, &ConfigurationError{Field: string(cfg.sortField)}
		}
		if cfg.reverse {
			asc := less
			less = func(a, b models.City) bool { return asc(b, a) }
		}
		sort.SliceStable(owned, func(i, j int) bool { return less(owned[i], owned[j]) })
	}

	return &Iterator{cities: owned}, nil
}

// SetMinPopulation replaces the population floor. No sign or range checks;
// the new floor applies to the very next call to Next.
func (it *Iterator) SetMinPopulation(min int) {
	it.minPopulation = min
}

// MinPopulation returns the current floor.
func (it *Iterator) MinPopulation() int {
	return it.minPopulation
}

// Next returns the next city whose population is at or above the current
// floor. ok is false once the sequence is exhausted; exhaustion is normal
// control flow, not an error.
func (it *Iterator) Next() (models.City, bool) {
	city, cursor, ok := advance(it.cities, it.cursor, it.minPopulation)
	it.cursor = cursor
	return city, ok
}

// advance is the pure step function behind Next: scan forward from cursor
// for the first city at or above the floor and return it together with the
// cursor position just past it. On exhaustion the cursor comes back
// unchanged, so lowering the floor afterwards can still surface the
// skipped tail.
func advance(cities []models.City, cursor, floor int) (models.City, int, bool) {
	for i := cursor; i < len(cities); i++ {
		if cities[i].Population >= floor {
			return cities[i], i + 1, true
		}
	}
	return models.City{}, cursor, false
}

// Reset restarts traversal from the beginning of the stored sequence. The
// sequence and its sort order are not recomputed.
func (it *Iterator) Reset() {
	it.cursor = 0
}

// Collect drains the rest of the traversal into a slice.
func (it *Iterator) Collect() []models.City {
	var out []models.City
	for {
		city, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, city)
	}
}

// Len returns the number of cities held, ignoring the floor.
func (it *Iterator) Len() int {
	return len(it.cities)
}
