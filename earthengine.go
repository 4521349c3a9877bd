package earthengine

// A LatLon is a WGS84 position.
type LatLon struct {
	Lat float64
	Lon float64
}

// BandValues maps band names to reduced values. A nil value means that the
// band had no unmasked pixels in the region.
type BandValues map[string]*float64
