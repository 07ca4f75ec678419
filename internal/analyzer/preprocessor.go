package analyzer

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/floats"

	"go-deforest-monitor/pkg/models"
	"go-deforest-monitor/pkg/validation"
)

// preprocessor implements Preprocessor. It validates the raw raster, resizes
// every plane to the target resolution, rescales samples to [0, 1], and
// optionally runs a 3x3 mean-filter denoising pass. The input raster is
// never written to.
type preprocessor struct {
	opts      AnalysisOptions
	validator *validation.RasterValidator
}

// NewPreprocessor creates a preprocessor for the given options
func NewPreprocessor(opts AnalysisOptions) Preprocessor {
	return &preprocessor{
		opts:      opts,
		validator: validation.NewRasterValidator(),
	}
}

// Preprocess produces a normalized raster at the target resolution
func (p *preprocessor) Preprocess(raster *models.RasterImage) (*models.RasterImage, error) {
	if err := p.validator.Validate(raster); err != nil {
		return nil, err
	}

	out := models.NewRasterImage(p.opts.TargetWidth, p.opts.TargetHeight)
	for band, plane := range raster.Planes {
		resized := p.resizePlane(plane, raster.Width, raster.Height)
		normalized := p.normalizePlane(resized, plane)
		if p.opts.Denoise {
			normalized = meanFilter(normalized, p.opts.TargetWidth, p.opts.TargetHeight)
		}
		out.Planes[band] = normalized
	}
	return out, nil
}

// resizePlane resamples one band to the target resolution. The plane is
// stretched into a 16-bit grayscale image for the resampler and mapped back
// afterwards, so arbitrary input scales survive the round trip.
func (p *preprocessor) resizePlane(plane []float64, width, height int) []float64 {
	tw, th := p.opts.TargetWidth, p.opts.TargetHeight
	if width == tw && height == th {
		cp := make([]float64, len(plane))
		copy(cp, plane)
		return cp
	}

	lo := floats.Min(plane)
	hi := floats.Max(plane)
	delta := hi - lo

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 0.0
			if delta > 0 {
				v = (plane[y*width+x] - lo) / delta * 65535.0
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v + 0.5)})
		}
	}

	resized := resize.Resize(uint(tw), uint(th), img, p.interpolation())

	out := make([]float64, tw*th)
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			g := color.Gray16Model.Convert(resized.At(x, y)).(color.Gray16)
			out[y*tw+x] = lo + float64(g.Y)/65535.0*delta
		}
	}
	return out
}

func (p *preprocessor) interpolation() resize.InterpolationFunction {
	switch p.opts.Resampling {
	case ResamplingBilinear:
		return resize.Bilinear
	case ResamplingNearest:
		return resize.NearestNeighbor
	default:
		return resize.MitchellNetravali
	}
}

// normalizePlane rescales samples to [0, 1]. Min-max mode stretches by the
// original band's own range (a constant band maps to all zeros); fixed mode
// divides by the source bit-depth range inferred from the original samples.
func (p *preprocessor) normalizePlane(plane, original []float64) []float64 {
	out := make([]float64, len(plane))

	switch p.opts.Normalization {
	case NormalizationMinMax:
		lo := floats.Min(original)
		hi := floats.Max(original)
		delta := hi - lo
		for i, v := range plane {
			if delta > 0 {
				out[i] = clamp01((v - lo) / delta)
			}
		}
	default: // NormalizationFixed
		scale := 255.0
		if floats.Max(original) > 255.0 {
			scale = 65535.0
		}
		for i, v := range plane {
			out[i] = clamp01(v / scale)
		}
	}
	return out
}

// meanFilter applies a 3x3 box mean with edge clamping
func meanFilter(plane []float64, width, height int) []float64 {
	out := make([]float64, len(plane))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			var count int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					sum += plane[ny*width+nx]
					count++
				}
			}
			out[y*width+x] = sum / float64(count)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
