package grid

import (
	"fmt"
	"log"
)

// Canonical axis names used internally regardless of source naming.
const (
	DimLat  = "lat"
	DimLon  = "lon"
	DimTime = "time"
)

// Candidate axis names per canonical axis, tried in priority order.
// First match wins; absence is not an error.
var (
	latCandidates  = []string{"lat", "latitude", "y", "rlat"}
	lonCandidates  = []string{"lon", "longitude", "x", "rlon"}
	timeCandidates = []string{"time", "t", "date"}
)

// spatialAxisNames are the axis names recognized as spatial when classifying
// metric results.
var spatialAxisNames = map[string]bool{
	"lat": true, "latitude": true, "lon": true, "longitude": true,
}

// IsSpatialDim reports whether the axis name is a recognized spatial axis.
func IsSpatialDim(name string) bool { return spatialAxisNames[name] }

// DetectDims maps canonical axis names to the actual axis names present in
// the dataset. Two canonical axes resolving to the same actual axis is an
// ErrAmbiguousDimension.
func DetectDims(ds *Dataset) (map[string]string, error) {
	dims := ds.Dims()
	found := func(candidates []string) (string, bool) {
		for _, c := range candidates {
			if _, ok := dims[c]; ok {
				return c, true
			}
		}
		return "", false
	}

	dimMap := make(map[string]string, 3)
	if name, ok := found(latCandidates); ok {
		dimMap[DimLat] = name
	}
	if name, ok := found(lonCandidates); ok {
		dimMap[DimLon] = name
	}
	if name, ok := found(timeCandidates); ok {
		dimMap[DimTime] = name
	}

	seen := make(map[string]string, len(dimMap))
	for canonical, actual := range dimMap {
		if prev, ok := seen[actual]; ok {
			return nil, fmt.Errorf("axis %q claimed by both %q and %q: %w",
				actual, prev, canonical, ErrAmbiguousDimension)
		}
		seen[actual] = canonical
	}
	return dimMap, nil
}

// NormalizeDims renames recognized axes to their canonical names. Axes
// already canonical and axes not recognized are left untouched, so applying
// the normalizer twice is a no-op.
func NormalizeDims(ds *Dataset) (*Dataset, error) {
	dimMap, err := DetectDims(ds)
	if err != nil {
		return nil, err
	}
	rename := make(map[string]string, len(dimMap))
	for canonical, actual := range dimMap {
		if actual != canonical {
			rename[actual] = canonical
		}
	}
	if len(rename) == 0 {
		return ds, nil
	}
	log.Printf("Renaming dimensions: %v", rename)
	return ds.RenameDims(rename), nil
}
