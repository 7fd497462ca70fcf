package vectorio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/digitize-cli/internal/geomodel"
)

// ReadPointsCSV loads points from a CSV with a header row. Longitude and
// latitude columns are matched by name (lon/lng/longitude/x and
// lat/latitude/y); an id/name/label column is optional.
func ReadPointsCSV(path string) ([]geomodel.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "vectorio: read csv header %s", path)
	}
	xCol, yCol, idCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "lon", "lng", "longitude", "x":
			xCol = i
		case "lat", "latitude", "y":
			yCol = i
		case "id", "name", "label":
			if idCol < 0 {
				idCol = i
			}
		}
	}
	if xCol < 0 || yCol < 0 {
		return nil, eris.Errorf("vectorio: %s: missing coordinate columns in header %v", path, header)
	}

	var points []geomodel.Point
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "vectorio: read csv %s", path)
		}
		line++
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[xCol]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "vectorio: %s line %d: bad longitude", path, line)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[yCol]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "vectorio: %s line %d: bad latitude", path, line)
		}
		id := fmt.Sprintf("point/%d", len(points))
		if idCol >= 0 && idCol < len(rec) {
			if v := strings.TrimSpace(rec[idCol]); v != "" {
				id = v
			}
		}
		points = append(points, geomodel.Point{ID: id, X: x, Y: y})
	}
	return points, nil
}
