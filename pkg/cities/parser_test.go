package cities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord(name string, population any, lat, lon any) map[string]any {
	return map[string]any{
		"name":       name,
		"district":   "Central",
		"population": population,
		"subject":    "Moscow Oblast",
		"coords":     map[string]any{"lat": lat, "lon": lon},
	}
}

func TestParseCities(t *testing.T) {
	records := []map[string]any{
		validRecord("Moscow", 12655050, "55.7558", "37.6173"),
		validRecord("Podolsk", 308130, 55.4242, 37.5547),
	}

	parsed, err := ParseCities(records)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "Moscow", parsed[0].Name)
	assert.Equal(t, 12655050, parsed[0].Population)
	assert.Equal(t, "Central", parsed[0].District)
	assert.Equal(t, "Moscow Oblast", parsed[0].Subject)
	assert.InDelta(t, 55.7558, parsed[0].Lat, 1e-9)
	assert.InDelta(t, 37.6173, parsed[0].Lon, 1e-9)

	// Numeric coords pass through unchanged
	assert.InDelta(t, 55.4242, parsed[1].Lat, 1e-9)
	assert.InDelta(t, 37.5547, parsed[1].Lon, 1e-9)
}

func TestParseCitiesPreservesOrder(t *testing.T) {
	records := []map[string]any{
		validRecord("Zelenograd", 250000, "55.99", "37.21"),
		validRecord("Balashikha", 507300, "55.80", "37.94"),
		validRecord("Khimki", 257757, "55.89", "37.44"),
	}

	parsed, err := ParseCities(records)
	require.NoError(t, err)

	names := make([]string, len(parsed))
	for i, c := range parsed {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Zelenograd", "Balashikha", "Khimki"}, names)
}

func TestParseCitiesMissingKeys(t *testing.T) {
	for _, key := range []string{"name", "district", "population", "subject", "coords"} {
		t.Run(key, func(t *testing.T) {
			rec := validRecord("Moscow", 12655050, "55.7558", "37.6173")
			delete(rec, key)

			parsed, err := ParseCities([]map[string]any{rec})
			assert.Nil(t, parsed)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reason, key)
			assert.NotNil(t, verr.Record)
		})
	}
}

func TestParseCitiesMissingCoordKeys(t *testing.T) {
	for _, key := range []string{"lat", "lon"} {
		t.Run(key, func(t *testing.T) {
			rec := validRecord("Moscow", 12655050, "55.7558", "37.6173")
			delete(rec["coords"].(map[string]any), key)

			parsed, err := ParseCities([]map[string]any{rec})
			assert.Nil(t, parsed)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reason, key)
		})
	}
}

func TestParseCitiesFailFast(t *testing.T) {
	// Second record is malformed: no cities at all come back, not a partial
	// batch
	records := []map[string]any{
		validRecord("Moscow", 12655050, "55.7558", "37.6173"),
		{"name": "broken"},
		validRecord("Kazan", 1257391, "55.8304", "49.0661"),
	}

	parsed, err := ParseCities(records)
	assert.Nil(t, parsed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "broken", verr.Record["name"])
}

func TestParseCitiesBadCoordinate(t *testing.T) {
	records := []map[string]any{
		validRecord("Moscow", 12655050, "not-a-number", "37.6173"),
	}

	parsed, err := ParseCities(records)
	assert.Nil(t, parsed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "not-a-number")
}

func TestParseCitiesPopulation(t *testing.T) {
	tests := []struct {
		name       string
		population any
		wantErr    bool
		want       int
	}{
		{"int", 1257391, false, 1257391},
		{"json number", json.Number("1257391"), false, 1257391},
		{"integral float", float64(1500), false, 1500},
		{"fractional float", 1500.5, true, 0},
		{"string", "1500", true, 0},
		{"negative", -5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []map[string]any{
				validRecord("Kazan", tt.population, "55.8304", "49.0661"),
			}
			parsed, err := ParseCities(records)

			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Nil(t, parsed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed[0].Population)
		})
	}
}

func TestParseCitiesNonTextName(t *testing.T) {
	rec := validRecord("Moscow", 12655050, "55.7558", "37.6173")
	rec["name"] = 42

	parsed, err := ParseCities([]map[string]any{rec})
	assert.Nil(t, parsed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseCitiesJSONNumberCoords(t *testing.T) {
	// The loader decodes with json.Number, so coords arrive in that shape
	records := []map[string]any{
		validRecord("Kazan", json.Number("1257391"), json.Number("55.8304"), json.Number("49.0661")),
	}

	parsed, err := ParseCities(records)
	require.NoError(t, err)
	assert.InDelta(t, 55.8304, parsed[0].Lat, 1e-9)
	assert.InDelta(t, 49.0661, parsed[0].Lon, 1e-9)
	assert.Equal(t, 1257391, parsed[0].Population)
}

func TestParseCitiesEmpty(t *testing.T) {
	parsed, err := ParseCities(nil)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}
