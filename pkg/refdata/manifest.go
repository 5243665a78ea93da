package refdata

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// ManifestStop is a row of a GTFS static stops.txt.
type ManifestStop struct {
	StopID        string  `csv:"stop_id"`
	StopCode      string  `csv:"stop_code"`
	StopName      string  `csv:"stop_name"`
	StopDesc      string  `csv:"stop_desc"`
	StopLat       float64 `csv:"stop_lat"`
	StopLon       float64 `csv:"stop_lon"`
	ZoneID        string  `csv:"zone_id"`
	StopURL       string  `csv:"stop_url"`
	LocationType  string  `csv:"location_type"`
	ParentStation string  `csv:"parent_station"`
}

// IsStation reports whether the row is a parent station rather than a platform.
func (s *ManifestStop) IsStation() bool {
	return s.LocationType == "1"
}

func LoadManifest(reader io.Reader) ([]*ManifestStop, error) {
	var stops []*ManifestStop
	if err := gocsv.Unmarshal(reader, &stops); err != nil {
		return nil, fmt.Errorf("stops manifest: %w", err)
	}
	return stops, nil
}

func LoadManifestFile(path string) ([]*ManifestStop, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadManifest(file)
}
