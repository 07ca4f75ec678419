package report

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "go-deforest-monitor/internal/errors"
	"go-deforest-monitor/pkg/models"
)

// MaskEncoding selects how the deforestation mask is represented in reports
type MaskEncoding string

const (
	// MaskEncodingInline emits nested 0/1 rows. This is the default.
	MaskEncodingInline MaskEncoding = "inline"
	// MaskEncodingRLE emits alternating run lengths, starting with the
	// run of non-deforested pixels (possibly 0), row-major
	MaskEncodingRLE MaskEncoding = "rle"
	// MaskEncodingBase64 packs the mask bits row-major, MSB-first, into
	// bytes and base64-encodes them
	MaskEncodingBase64 MaskEncoding = "base64"
)

// Report is the flat single-scene record described by the export contract.
// Struct order fixes the JSON field order.
type Report struct {
	SourceFilename          string                             `json:"source_filename"`
	DeforestationPercentage float64                            `json:"deforestation_percentage"`
	Confidence              float64                            `json:"confidence"`
	ForestPercentage        float64                            `json:"forest_percentage"`
	TotalPixels             int                                `json:"total_pixels"`
	DeforestedPixels        int                                `json:"deforested_pixels"`
	ForestPixels            int                                `json:"forest_pixels"`
	FallbackIndices         []models.IndexName                 `json:"fallback_indices,omitempty"`
	IndexSummaries          map[string]models.IndexSummary     `json:"index_summaries"`
	MaskEncoding            string                             `json:"mask_encoding"`
	Mask                    interface{}                        `json:"mask"`
}

// Serializer converts analysis results and batch reports into exportable
// JSON and CSV documents and writes them under the output directory
type Serializer struct {
	encoding  MaskEncoding
	outputDir string
}

// NewSerializer creates a serializer. An unknown mask encoding is a
// configuration error.
func NewSerializer(encoding MaskEncoding, outputDir string) (*Serializer, error) {
	switch encoding {
	case MaskEncodingInline, MaskEncodingRLE, MaskEncodingBase64:
	default:
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("unknown mask encoding %q", encoding), nil)
	}
	return &Serializer{encoding: encoding, outputDir: outputDir}, nil
}

// BuildReport converts an analysis result into the flat report record.
// Numeric fields pass through a finiteness coercion so a defect upstream can
// never leak NaN or Inf into an export.
func (s *Serializer) BuildReport(res *models.AnalysisResult) (*Report, error) {
	summaries := make(map[string]models.IndexSummary, len(res.IndexSummaries))
	for name, sum := range res.IndexSummaries {
		summaries[string(name)] = models.IndexSummary{
			Min:  finite(sum.Min),
			Max:  finite(sum.Max),
			Mean: finite(sum.Mean),
		}
	}

	var mask interface{}
	if res.Mask != nil {
		encoded, err := EncodeMask(res.Mask, s.encoding)
		if err != nil {
			return nil, err
		}
		mask = encoded
	}

	return &Report{
		SourceFilename:          res.SourceFilename,
		DeforestationPercentage: finite(res.DeforestationPercentage),
		Confidence:              finite(res.Confidence),
		ForestPercentage:        finite(res.ForestPercentage),
		TotalPixels:             res.TotalPixels,
		DeforestedPixels:        res.DeforestedPixels,
		ForestPixels:            res.ForestPixels,
		FallbackIndices:         res.FallbackIndices,
		IndexSummaries:          summaries,
		MaskEncoding:            string(s.encoding),
		Mask:                    mask,
	}, nil
}

// MarshalResult serializes one result as an indented JSON report
func (s *Serializer) MarshalResult(res *models.AnalysisResult) ([]byte, error) {
	report, err := s.BuildReport(res)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError("marshal report", err)
	}
	return data, nil
}

// ParseReport parses a JSON report produced by MarshalResult
func ParseReport(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewValidationError("parse report", err)
	}
	return &report, nil
}

// MarshalBatch serializes a batch report as indented JSON
func (s *Serializer) MarshalBatch(report *models.BatchReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError("marshal batch report", err)
	}
	return data, nil
}

// csvHeader is the fixed CSV column layout: scalar fields first, then
// min/max/mean per index following models.IndexOrder
func csvHeader() []string {
	header := []string{
		"source_filename",
		"deforestation_percentage",
		"confidence",
		"forest_percentage",
		"total_pixels",
		"deforested_pixels",
		"forest_pixels",
	}
	for _, name := range models.IndexOrder {
		header = append(header,
			string(name)+"_min",
			string(name)+"_max",
			string(name)+"_mean",
		)
	}
	return header
}

func csvRow(res *models.AnalysisResult) []string {
	row := []string{
		res.SourceFilename,
		formatFloat(res.DeforestationPercentage),
		formatFloat(res.Confidence),
		formatFloat(res.ForestPercentage),
		strconv.Itoa(res.TotalPixels),
		strconv.Itoa(res.DeforestedPixels),
		strconv.Itoa(res.ForestPixels),
	}
	for _, name := range models.IndexOrder {
		sum, ok := res.IndexSummaries[name]
		if !ok {
			row = append(row, "", "", "")
			continue
		}
		row = append(row,
			formatFloat(sum.Min),
			formatFloat(sum.Max),
			formatFloat(sum.Mean),
		)
	}
	return row
}

// ExportCSV renders results as a CSV document with a stable column layout
func (s *Serializer) ExportCSV(results []models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader()); err != nil {
		return nil, apperrors.NewInternalError("write csv header", err)
	}
	for i := range results {
		if err := w.Write(csvRow(&results[i])); err != nil {
			return nil, apperrors.NewInternalError("write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewInternalError("flush csv", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON renders results as a JSON array of reports
func (s *Serializer) ExportJSON(results []models.AnalysisResult) ([]byte, error) {
	reports := make([]*Report, 0, len(results))
	for i := range results {
		report, err := s.BuildReport(&results[i])
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError("marshal reports", err)
	}
	return data, nil
}

// SaveResult writes one scene report under <outputDir>/analysis and returns
// the written path
func (s *Serializer) SaveResult(res *models.AnalysisResult) (string, error) {
	data, err := s.MarshalResult(res)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.outputDir, "analysis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewInternalError("create output directory", err)
	}
	path := filepath.Join(dir, "results_"+filepath.Base(res.SourceFilename)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewInternalError("write report file", err)
	}
	return path, nil
}

// SaveResults writes per-scene reports concurrently
func (s *Serializer) SaveResults(results []models.AnalysisResult) error {
	var g errgroup.Group
	g.SetLimit(4)
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			_, err := s.SaveResult(res)
			return err
		})
	}
	return g.Wait()
}

// SaveBatchReport writes the aggregate batch document and returns its path
func (s *Serializer) SaveBatchReport(report *models.BatchReport) (string, error) {
	data, err := s.MarshalBatch(report)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.outputDir, "analysis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewInternalError("create output directory", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("batch_report_%s.json", time.Now().UTC().Format("20060102T150405Z")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.NewInternalError("write batch report file", err)
	}
	return path, nil
}

// EncodeMask converts a mask into the payload for the given encoding
func EncodeMask(mask *models.DeforestationMask, encoding MaskEncoding) (interface{}, error) {
	switch encoding {
	case MaskEncodingInline:
		rows := make([][]int, mask.Height)
		for y := 0; y < mask.Height; y++ {
			row := make([]int, mask.Width)
			for x := 0; x < mask.Width; x++ {
				if mask.Bits[y*mask.Width+x] {
					row[x] = 1
				}
			}
			rows[y] = row
		}
		return rows, nil

	case MaskEncodingRLE:
		runs := []int{}
		current := false
		length := 0
		for _, bit := range mask.Bits {
			if bit == current {
				length++
				continue
			}
			runs = append(runs, length)
			current = bit
			length = 1
		}
		runs = append(runs, length)
		return runs, nil

	case MaskEncodingBase64:
		packed := make([]byte, (len(mask.Bits)+7)/8)
		for i, bit := range mask.Bits {
			if bit {
				packed[i/8] |= 1 << (7 - uint(i%8))
			}
		}
		return base64.StdEncoding.EncodeToString(packed), nil

	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown mask encoding %q", encoding), nil)
	}
}

// DecodeMaskRLE reconstructs a mask from alternating run lengths
func DecodeMaskRLE(runs []int, width, height int) (*models.DeforestationMask, error) {
	mask := models.NewDeforestationMask(width, height)
	pos := 0
	value := false
	for _, run := range runs {
		if run < 0 || pos+run > len(mask.Bits) {
			return nil, apperrors.NewValidationError("rle payload does not fit mask dimensions", nil)
		}
		for i := 0; i < run; i++ {
			mask.Bits[pos] = value
			pos++
		}
		value = !value
	}
	if pos != len(mask.Bits) {
		return nil, apperrors.NewValidationError("rle payload does not cover mask", nil)
	}
	return mask, nil
}

// DecodeMaskBase64 reconstructs a mask from a packed base64 payload
func DecodeMaskBase64(payload string, width, height int) (*models.DeforestationMask, error) {
	packed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid base64 mask payload", err)
	}
	mask := models.NewDeforestationMask(width, height)
	if len(packed) < (len(mask.Bits)+7)/8 {
		return nil, apperrors.NewValidationError("base64 payload too short for mask dimensions", nil)
	}
	for i := range mask.Bits {
		mask.Bits[i] = packed[i/8]&(1<<(7-uint(i%8))) != 0
	}
	return mask, nil
}

// finite coerces NaN/Inf to 0. Upstream division and uniform-image policies
// keep outputs finite; exports must hold that line even if a defect slips in.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(finite(v), 'g', -1, 64)
}
