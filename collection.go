package earthengine

// An ImageCollection is a server-side image collection.
type ImageCollection struct {
	value *Value
}

// An Image is a server-side image.
type Image struct {
	value *Value
}

// A Geometry is a server-side geometry.
type Geometry struct {
	value *Value
}

// A Reducer is a server-side reducer.
type Reducer struct {
	value *Value
}

// A Dictionary is a server-side dictionary.
type Dictionary struct {
	value *Value
}

// A Number is a server-side number.
type Number struct {
	value *Value
}

// LoadImageCollection returns the image collection with the given asset id.
func LoadImageCollection(id string) ImageCollection {
	return ImageCollection{
		value: Invoke("ImageCollection.load", map[string]*Value{
			"id": Constant(id),
		}),
	}
}

// Sort returns c sorted by property.
func (c ImageCollection) Sort(property string, ascending bool) ImageCollection {
	return ImageCollection{
		value: Invoke("Collection.limit", map[string]*Value{
			"collection": c.value,
			"key":        Constant(property),
			"ascending":  Constant(ascending),
		}),
	}
}

// Size returns the number of images in c.
func (c ImageCollection) Size() Number {
	return Number{
		value: Invoke("Collection.size", map[string]*Value{
			"collection": c.value,
		}),
	}
}

// First returns the first image in c.
func (c ImageCollection) First() Image {
	return Image{
		value: Invoke("Collection.first", map[string]*Value{
			"collection": c.value,
		}),
	}
}

// Value returns c's expression graph.
func (c ImageCollection) Value() *Value { return c.value }

// Select returns i restricted to bands. If bands is empty then i is returned
// unchanged.
func (i Image) Select(bands ...string) Image {
	if len(bands) == 0 {
		return i
	}
	bandSelectors := make([]*Value, len(bands))
	for j, band := range bands {
		bandSelectors[j] = Constant(band)
	}
	return Image{
		value: Invoke("Image.select", map[string]*Value{
			"input":         i.value,
			"bandSelectors": Array(bandSelectors...),
		}),
	}
}

// ReduceRegion applies reducer to all the pixels of i in geometry at the given
// scale in meters.
func (i Image) ReduceRegion(reducer Reducer, geometry Geometry, scale, maxPixels float64) Dictionary {
	return Dictionary{
		value: Invoke("Image.reduceRegion", map[string]*Value{
			"image":     i.value,
			"reducer":   reducer.value,
			"geometry":  geometry.value,
			"scale":     Constant(scale),
			"maxPixels": Constant(maxPixels),
		}),
	}
}

// Value returns i's expression graph.
func (i Image) Value() *Value { return i.value }

// PointGeometry returns a point geometry at latLon.
func PointGeometry(latLon LatLon) Geometry {
	return Geometry{
		value: Invoke("GeometryConstructors.Point", map[string]*Value{
			"coordinates": Constant([]float64{latLon.Lon, latLon.Lat}),
		}),
	}
}

// MeanReducer returns a reducer that computes the unweighted arithmetic mean.
func MeanReducer() Reducer {
	return Reducer{
		value: Invoke("Reducer.mean", nil),
	}
}

// EmptyDictionary returns an empty dictionary.
func EmptyDictionary() Dictionary {
	return Dictionary{
		value: DictionaryOf(nil),
	}
}

// IfDictionary returns trueCase if condition is non-zero, otherwise
// falseCase. Only the selected case is evaluated.
func IfDictionary(condition Number, trueCase, falseCase Dictionary) Dictionary {
	return Dictionary{
		value: Invoke("Algorithms.If", map[string]*Value{
			"condition": condition.value,
			"trueCase":  trueCase.value,
			"falseCase": falseCase.value,
		}),
	}
}

// Value returns d's expression graph.
func (d Dictionary) Value() *Value { return d.value }

// GT returns 1 if n is greater than right, 0 otherwise.
func (n Number) GT(right float64) Number {
	return Number{
		value: Invoke("Number.gt", map[string]*Value{
			"left":  n.value,
			"right": Constant(right),
		}),
	}
}
