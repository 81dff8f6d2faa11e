package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi", ".smf":
		return FormatMIDI
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}

	return FormatUnknown
}

// Extension returns the preferred file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatMIDI:
		return ".mid"
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}

// Decode parses data in the given format. An unknown format is detected
// from the content.
func (c *Converter) Decode(data []byte, format Format) (*Clip, error) {
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	codec, ok := c.codecs[format]
	if !ok {
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
	return codec.Decode(data)
}

// Encode renders a clip in the given format
func (c *Converter) Encode(clip *Clip, format Format) (*ConversionResult, error) {
	codec, ok := c.codecs[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	data, err := codec.Encode(clip)
	if err != nil {
		return nil, err
	}
	name := clip.Name
	if name == "" {
		name = "clip"
	}
	return &ConversionResult{Data: data, Filename: name + format.Extension(), Format: format}, nil
}

// ReadFile loads a clip from disk, detecting the format from the extension
// or, failing that, the content
func (c *Converter) ReadFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	clip, err := c.Decode(data, DetectFormat(path))
	if err != nil {
		return nil, err
	}
	if clip.Name == "" {
		clip.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return clip, nil
}

// WriteFile stores a clip, choosing the format from the extension
func (c *Converter) WriteFile(clip *Clip, path string) error {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}
	result, err := c.Encode(clip, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, result.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	clip, err := c.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	return c.WriteFile(clip, outputPath)
}

// GetSupportedConversions returns a list of supported conversion paths
func (c *Converter) GetSupportedConversions() []string {
	formats := make([]string, 0, len(c.codecs))
	for f := range c.codecs {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)

	var out []string
	for _, from := range formats {
		for _, to := range formats {
			if from != to {
				out = append(out, from+" -> "+to)
			}
		}
	}
	return out
}
