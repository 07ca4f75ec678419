package models

// Band identifies the spectral meaning of a raster plane. Band semantics are
// carried explicitly rather than by positional convention so that the
// Green-for-NIR fallback in the index calculator stays visible and testable.
type Band string

const (
	BandRed   Band = "red"
	BandGreen Band = "green"
	BandBlue  Band = "blue"
	BandNIR   Band = "nir"
)

// RasterImage is a single multi-band scene. Each plane is a row-major
// float64 slice of length Width*Height; all planes share the same shape.
// A raster is treated as immutable once indices have been derived from it:
// the preprocessor always returns a new instance.
type RasterImage struct {
	Width  int
	Height int
	Planes map[Band][]float64
}

// NewRasterImage creates an empty raster with the given dimensions
func NewRasterImage(width, height int) *RasterImage {
	return &RasterImage{
		Width:  width,
		Height: height,
		Planes: make(map[Band][]float64, 4),
	}
}

// Pixels returns the number of pixels per plane
func (r *RasterImage) Pixels() int {
	return r.Width * r.Height
}

// Plane returns the samples for a band, if present
func (r *RasterImage) Plane(band Band) ([]float64, bool) {
	p, ok := r.Planes[band]
	return p, ok
}

// HasNIR reports whether a near-infrared plane is present
func (r *RasterImage) HasNIR() bool {
	_, ok := r.Planes[BandNIR]
	return ok
}

// BandCount returns the number of spectral planes
func (r *RasterImage) BandCount() int {
	return len(r.Planes)
}

// Clone returns a deep copy of the raster
func (r *RasterImage) Clone() *RasterImage {
	out := NewRasterImage(r.Width, r.Height)
	for band, plane := range r.Planes {
		cp := make([]float64, len(plane))
		copy(cp, plane)
		out.Planes[band] = cp
	}
	return out
}

// IndexName identifies one of the supported vegetation indices
type IndexName string

const (
	IndexNDVI  IndexName = "NDVI"
	IndexEVI   IndexName = "EVI"
	IndexGNDVI IndexName = "GNDVI"
	IndexSAVI  IndexName = "SAVI"
	IndexGRVI  IndexName = "GRVI"
	IndexVARI  IndexName = "VARI"
	IndexTGI   IndexName = "TGI"
)

// IndexOrder is the fixed, closed set of computed indices. Serialization and
// CSV column layout follow this order.
var IndexOrder = []IndexName{
	IndexNDVI,
	IndexEVI,
	IndexGNDVI,
	IndexSAVI,
	IndexGRVI,
	IndexVARI,
	IndexTGI,
}

// VegetationIndexSet maps each index name to a per-pixel score plane shaped
// like the source raster. Values are nominally in [-1, 1] but are not
// clamped (SAVI can exceed the range under soil-brightness correction,
// TGI is unnormalized). Owned exclusively by the pipeline run that made it.
type VegetationIndexSet struct {
	Width  int
	Height int
	Values map[IndexName][]float64

	// FallbackIndices lists indices computed with Green substituted for a
	// missing NIR plane.
	FallbackIndices []IndexName
}

// Pixels returns the number of pixels per index plane
func (s *VegetationIndexSet) Pixels() int {
	return s.Width * s.Height
}

// UsedFallback reports whether the named index was computed without true NIR
func (s *VegetationIndexSet) UsedFallback(name IndexName) bool {
	for _, n := range s.FallbackIndices {
		if n == name {
			return true
		}
	}
	return false
}

// DeforestationMask is a per-pixel binary classification, row-major,
// same shape as the source raster. True marks a deforested pixel.
type DeforestationMask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewDeforestationMask creates an all-false mask
func NewDeforestationMask(width, height int) *DeforestationMask {
	return &DeforestationMask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// Count returns the number of deforested pixels
func (m *DeforestationMask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}
