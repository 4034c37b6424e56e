// Package cities turns raw decoded city records into validated City values
// and exposes them through a filterable, sortable iterator.
package cities

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/kass/go-city-index/pkg/models"
)

var (
	requiredKeys      = []string{"name", "district", "population", "subject", "coords"}
	requiredCoordKeys = []string{"lat", "lon"}
)

// ParseCities converts a batch of raw records into City values, preserving
// input order. The whole batch is validated up front: the first record
// missing a required key (or whose coords lack lat/lon) aborts the parse
// with a ValidationError and no cities are returned.
func ParseCities(records []map[string]any) ([]models.City, error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	out := make([]models.City, 0, len(records))
	for _, rec := range records {
		city, err := buildCity(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, city)
	}
	return out, nil
}

// validateRecords checks the required-key shape of every record before any
// City is constructed. Fail-fast: the first bad record wins.
func validateRecords(records []map[string]any) error {
	for _, rec := range records {
		for _, key := range requiredKeys {
			if _, ok := rec[key]; !ok {
				return &ValidationError{Reason: fmt.Sprintf("missing required key %q", key), Record: rec}
			}
		}

		coords, ok := rec["coords"].(map[string]any)
		if !ok {
			return &ValidationError{Reason: "coords is not an object", Record: rec}
		}
		for _, key := range requiredCoordKeys {
			if _, ok := coords[key]; !ok {
				return &ValidationError{Reason: fmt.Sprintf("coords missing required key %q", key), Record: rec}
			}
		}
	}
	return nil
}

func buildCity(rec map[string]any) (models.City, error) {
	var c models.City
	var err error

	if c.Name, err = textField(rec, "name"); err != nil {
		return models.City{}, err
	}
	if c.District, err = textField(rec, "district"); err != nil {
		return models.City{}, err
	}
	if c.Subject, err = textField(rec, "subject"); err != nil {
		return models.City{}, err
	}

	pop, ok := rec["population"]
	if !ok {
		return models.City{}, &ValidationError{Reason: `missing required key "population"`, Record: rec}
	}
	if c.Population, err = intValue(pop); err != nil {
		return models.City{}, &ValidationError{Reason: fmt.Sprintf("population %v is not an integer", pop), Record: rec}
	}
	if c.Population < 0 {
		return models.City{}, &ValidationError{Reason: fmt.Sprintf("population %d is negative", c.Population), Record: rec}
	}

	coords, ok := rec["coords"].(map[string]any)
	if !ok {
		return models.City{}, &ValidationError{Reason: "coords is not an object", Record: rec}
	}
	if c.Lat, err = coordField(coords, "lat"); err != nil {
		return models.City{}, err
	}
	if c.Lon, err = coordField(coords, "lon"); err != nil {
		return models.City{}, err
	}

	return c, nil
}

func textField(rec map[string]any, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", &ValidationError{Reason: fmt.Sprintf("missing required key %q", key), Record: rec}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Reason: fmt.Sprintf("%s %v is not text", key, v), Record: rec}
	}
	return s, nil
}

func coordField(coords map[string]any, key string) (float64, error) {
	v, ok := coords[key]
	if !ok {
		return 0, &ValidationError{Reason: fmt.Sprintf("coords missing required key %q", key)}
	}
	f, err := floatValue(v)
	if err != nil {
		return 0, &ValidationError{Reason: fmt.Sprintf("cannot parse %s value %v", key, v)}
	}
	return f, nil
}

// floatValue coerces a coordinate to float64. Coordinates arrive either as
// numbers or as numeric strings depending on the data source.
func floatValue(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// intValue accepts a population value as given: integers only, no string
// coercion. Decoders that produce float64 are accepted when the value is
// integral.
func intValue(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not integral", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported population type %T", v)
	}
}
