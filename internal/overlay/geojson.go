package overlay

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/breatheroute/roadtrip/internal/trip"
)

// Feature kinds written to the "kind" property.
const (
	FeatureRoute   = "route"
	FeatureSegment = "segment"
	FeatureMarker  = "marker"
)

// FeatureCollection exports the model as GeoJSON. Coordinates are written
// in [lng, lat] order as GeoJSON requires.
func (m RenderModel) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(m.RoutePath) > 1 {
		f := geojson.NewFeature(lineString(m.RoutePath))
		f.Properties["kind"] = FeatureRoute
		f.Properties["distanceMeters"] = m.DistanceMeters
		if m.EncodedPath != "" {
			f.Properties["encodedPath"] = m.EncodedPath
		}
		fc.Append(f)
	}

	for i, seg := range m.RouteSegments {
		if len(seg.Path) < 2 {
			continue
		}
		f := geojson.NewFeature(lineString(seg.Path))
		f.Properties["kind"] = FeatureSegment
		f.Properties["index"] = i
		f.Properties["congestion"] = string(seg.Color)
		if seg.StrokeColor != "" {
			f.Properties["stroke"] = seg.StrokeColor
		}
		fc.Append(f)
	}

	for _, mk := range m.Markers {
		f := geojson.NewFeature(toPoint(mk.Position))
		f.Properties["kind"] = FeatureMarker
		f.Properties["category"] = string(mk.Category)
		if mk.Subcategory != "" {
			f.Properties["subcategory"] = mk.Subcategory
		}
		f.Properties["label"] = mk.Label
		f.Properties["style"] = string(mk.Style)
		fc.Append(f)
	}

	if m.Bounds != nil {
		fc.BBox = geojson.NewBBox(m.Bounds.Bound())
	}
	return fc
}

func lineString(path []trip.Coordinate) orb.LineString {
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = toPoint(c)
	}
	return ls
}
