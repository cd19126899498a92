package compression

import (
	"fmt"
	"strings"

	"kleinpdf/internal/common"
)

// MIMETypePDF is the MIME designation of every payload produced by the core.
const MIMETypePDF = "application/pdf"

// Level is the user-facing compression level. It is always one of the three
// declared values; raw slider numbers never reach the engines.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"

	DefaultLevel = LevelMedium
)

// Levels lists every level from least to most aggressive.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// Slider presets used by the presentation layer.
var sliderPresets = map[Level]int{
	LevelLow:    20,
	LevelMedium: 50,
	LevelHigh:   70,
}

// ParseLevel resolves a level name. Matching ignores case and surrounding space.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelHigh:
		return LevelHigh, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidCompressionLevel, s)
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	_, ok := sliderPresets[l]
	return ok
}

// SliderValue returns the slider preset for l.
func (l Level) SliderValue() int {
	return sliderPresets[l]
}

// LevelFromSlider snaps a slider value to the nearest preset. When two presets
// are equally close the lower level wins.
func LevelFromSlider(value int) Level {
	best := LevelLow
	bestDist := -1
	for _, l := range Levels {
		d := value - sliderPresets[l]
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

// DirectiveSet holds the rewrite parameters for one compression level.
type DirectiveSet struct {
	// UseObjectStreams packs objects into compressed object streams and writes
	// an xref stream.
	UseObjectStreams bool `json:"use_object_streams"`
	// ObjectsPerTick is the number of objects handled between scheduler
	// yields. It never changes output bytes.
	ObjectsPerTick int `json:"objects_per_tick"`
	// SuppressMetadataUpdate leaves the info dictionary untouched.
	SuppressMetadataUpdate bool `json:"suppress_metadata_update"`
	// PreserveObjects keeps every object as parsed; false lets the adapter
	// deduplicate and prune.
	PreserveObjects     bool `json:"preserve_objects"`
	RemoveUnusedObjects bool `json:"remove_unused_objects"`
	RecompressStreams   bool `json:"recompress_streams"`
	// PageScale is the per-page geometric factor of the page-scaling variant.
	// Zero or one means pages keep their size.
	PageScale float64 `json:"page_scale"`
}

var directiveSets = map[Level]DirectiveSet{
	LevelLow: {
		UseObjectStreams:       false,
		ObjectsPerTick:         50,
		SuppressMetadataUpdate: true,
		PreserveObjects:        true,
		PageScale:              0.9,
	},
	LevelMedium: {
		UseObjectStreams:       true,
		ObjectsPerTick:         100,
		SuppressMetadataUpdate: true,
		PreserveObjects:        false,
		PageScale:              0.7,
	},
	LevelHigh: {
		UseObjectStreams:       true,
		ObjectsPerTick:         200,
		SuppressMetadataUpdate: true,
		PreserveObjects:        false,
		RemoveUnusedObjects:    true,
		RecompressStreams:      true,
		PageScale:              0.5,
	},
}

// Directives returns the directive set selected by l. Unknown levels fall back
// to the default level.
func (l Level) Directives() DirectiveSet {
	if d, ok := directiveSets[l]; ok {
		return d
	}
	return directiveSets[DefaultLevel]
}

// ScalesPages reports whether the page directive changes page geometry.
func (d DirectiveSet) ScalesPages() bool {
	return d.PageScale > 0 && d.PageScale < 1
}

// AtLeastAsAggressiveAs reports whether every structural reduction enabled in
// other is also enabled in d. ObjectsPerTick is ignored.
func (d DirectiveSet) AtLeastAsAggressiveAs(other DirectiveSet) bool {
	if other.UseObjectStreams && !d.UseObjectStreams {
		return false
	}
	if !other.PreserveObjects && d.PreserveObjects {
		return false
	}
	if other.RemoveUnusedObjects && !d.RemoveUnusedObjects {
		return false
	}
	if other.RecompressStreams && !d.RecompressStreams {
		return false
	}
	if other.ScalesPages() && (!d.ScalesPages() || d.PageScale > other.PageScale) {
		return false
	}
	return true
}

// SourceFile is a named PDF byte blob supplied by the upload collaborator.
type SourceFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Size returns the byte length of the file.
func (f SourceFile) Size() int64 {
	return int64(len(f.Data))
}

// OutputPayload is the terminal artifact of one engine invocation.
type OutputPayload struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// NewPDFPayload wraps serialized PDF bytes.
func NewPDFPayload(data []byte) *OutputPayload {
	return &OutputPayload{Data: data, MIMEType: MIMETypePDF}
}

// Size returns the payload byte length.
func (p *OutputPayload) Size() int64 {
	return int64(len(p.Data))
}

// BatchResultItem pairs a compressed payload with the file it came from.
type BatchResultItem struct {
	ID           string         `json:"id"`
	FileIndex    int            `json:"file_index"`
	OriginalName string         `json:"original_name"`
	OriginalSize int64          `json:"original_size"`
	DisplayName  string         `json:"display_name"`
	OutputSize   int64          `json:"output_size"`
	Payload      *OutputPayload `json:"-"`
}

// CompressionRatio returns the saved share of the original size in percent.
func (r BatchResultItem) CompressionRatio() float64 {
	if r.OriginalSize <= 0 {
		return 0
	}
	return float64(r.OriginalSize-r.OutputSize) / float64(r.OriginalSize) * 100
}

// ProgressEvent reports progress for one file of a batch.
type ProgressEvent struct {
	FileIndex int `json:"file_index"`
	Percent   int `json:"percent"`
}

// ProgressFunc receives per-file progress percentages from an engine.
type ProgressFunc func(percent int)

// ProgressSink receives batch progress events in real time.
type ProgressSink func(event ProgressEvent)
