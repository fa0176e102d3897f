package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Station is static reference data: a known safety station. The list is
// loaded once at startup and never mutated.
type Station struct {
	Name string  `json:"name"`
	Lat  float64 `json:"latitude"`
	Lon  float64 `json:"longitude"`
}

func (s Station) Coordinate() Coordinate {
	return Coordinate{Lat: s.Lat, Lon: s.Lon}
}

// RankedStation is a station annotated with its distance from a given
// position. Recomputed per ranking request, never stored.
type RankedStation struct {
	Station
	DistanceKm float64 `json:"distance_km"`
}

// LoadStations reads the station list from a JSON file.
func LoadStations(path string) ([]Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stations: read %q: %w", path, err)
	}

	var stations []Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("load stations: parse %q: %w", path, err)
	}

	for i, st := range stations {
		if st.Name == "" {
			return nil, fmt.Errorf("load stations: entry %d: name is required", i)
		}
		if err := ValidateCoordinate(st.Lat, st.Lon); err != nil {
			return nil, fmt.Errorf("load stations: entry %d (%s): %w", i, st.Name, err)
		}
	}

	return stations, nil
}
