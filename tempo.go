package earthengine

import "slices"

// TEMPONO2Collection is the TEMPO gridded NO2 tropospheric and stratospheric
// column collection.
const TEMPONO2Collection = "NASA/TEMPO/NO2_L3"

func NewTEMPONO2PointValueService(client *Client, options ...PointValueServiceOption) (*PointValueService, error) {
	return NewPointValueService(client, slices.Concat(
		[]PointValueServiceOption{
			WithCollection(TEMPONO2Collection),
			WithSortProperty(DefaultSortProperty),
			WithScale(DefaultScale),
			WithMaxPixels(DefaultMaxPixels),
		},
		options,
	)...)
}
