package world

// Geographic conversion uses the same equirectangular approximation as the
// routing service's airspace graph: one degree is treated as a fixed number
// of meters relative to a reference origin.
const metersPerDegree = 111320.0

// Default reference origin shared with the routing service.
const (
	DefaultOriginLat = 40.55417343
	DefaultOriginLon = -73.99583928
)

// GeoConverter maps latitude/longitude pairs into the local world frame.
type GeoConverter struct {
	OriginLat float64
	OriginLon float64
}

// NewGeoConverter returns a converter anchored at the given reference origin.
// Zero values fall back to the routing service's default origin.
func NewGeoConverter(originLat, originLon float64) *GeoConverter {
	if originLat == 0 && originLon == 0 {
		originLat, originLon = DefaultOriginLat, DefaultOriginLon
	}
	return &GeoConverter{OriginLat: originLat, OriginLon: originLon}
}

// ToWorld converts a geographic coordinate and altitude (meters) to a world
// position. Latitude maps to X, longitude to Z, altitude to Y.
func (g *GeoConverter) ToWorld(lat, lon, alt float64) Vec3 {
	return Vec3{
		X: (lat - g.OriginLat) * metersPerDegree,
		Y: alt,
		Z: (lon - g.OriginLon) * metersPerDegree,
	}
}

// ToGeo converts a world position back to latitude, longitude, and altitude.
func (g *GeoConverter) ToGeo(p Vec3) (lat, lon, alt float64) {
	return g.OriginLat + p.X/metersPerDegree, g.OriginLon + p.Z/metersPerDegree, p.Y
}
