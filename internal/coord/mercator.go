package coord

import "math"

const (
	// EarthCircumference is the equatorial circumference in meters at zoom 0.
	EarthCircumference = 40075016.685578488
	// OriginShift is half the earth's circumference.
	OriginShift = EarthCircumference / 2.0
	// CommonSpaceSize is the extent of the canonical common space: the whole
	// Web-Mercator world mapped onto [0, 512] in both axes.
	CommonSpaceSize = 512.0
	// ScreenPixelSizeMeters is the standardized rendering pixel size used by
	// OGC scale denominators (0.28 mm).
	ScreenPixelSizeMeters = 0.00028
)

// WebMercatorProj implements the Projection interface for EPSG:3857.
type WebMercatorProj struct{}

func (w *WebMercatorProj) EPSG() int { return 3857 }

func (w *WebMercatorProj) ToWGS84(x, y float64) (lon, lat float64) {
	lon = x / OriginShift * 180
	lat = 2*math.Atan(math.Exp(y/OriginShift*math.Pi))*180/math.Pi - 90
	return
}

func (w *WebMercatorProj) FromWGS84(lon, lat float64) (x, y float64) {
	x = lon / 180 * OriginShift
	y = math.Log(math.Tan((lat+90)*math.Pi/360)) / math.Pi * OriginShift
	return
}

// MercatorToCommon rescales Web-Mercator meters into the common space
// [0, 512]^2 with the origin at the north-west corner and y growing south,
// matching the map framework's world coordinates at zoom 0.
func MercatorToCommon(x, y float64) (cx, cy float64) {
	cx = (x/EarthCircumference + 0.5) * CommonSpaceSize
	cy = (0.5 - y/EarthCircumference) * CommonSpaceSize
	return
}

// CommonToMercator is the inverse of MercatorToCommon.
func CommonToMercator(cx, cy float64) (x, y float64) {
	x = (cx/CommonSpaceSize - 0.5) * EarthCircumference
	y = (0.5 - cy/CommonSpaceSize) * EarthCircumference
	return
}

// ResolutionAtLat returns the ground resolution in meters/pixel at the given
// latitude and Web-Mercator zoom level for the given tile size.
func ResolutionAtLat(lat float64, zoom, tileSize int) float64 {
	return EarthCircumference * math.Cos(lat*math.Pi/180.0) /
		math.Pow(2, float64(zoom)) / float64(tileSize)
}

// MaxZoomForResolution calculates the maximum Web-Mercator zoom level whose
// resolution is at least as coarse as the given ground pixel size.
func MaxZoomForResolution(pixelSize, centerLat float64, tileSize int) int {
	for z := 30; z >= 0; z-- {
		if ResolutionAtLat(centerLat, z, tileSize) >= pixelSize {
			return z
		}
	}
	return 0
}
