package converter

import (
	"encoding/json"
	"fmt"
)

// JSONCodec stores clips as indented JSON
type JSONCodec struct{}

// Name returns the codec name
func (JSONCodec) Name() string { return "JSON" }

// Format returns FormatJSON
func (JSONCodec) Format() Format { return FormatJSON }

// Encode implements Codec
func (JSONCodec) Encode(clip *Clip) ([]byte, error) {
	if clip == nil {
		return nil, fmt.Errorf("nil clip")
	}
	return json.MarshalIndent(clip, "", "  ")
}

// Decode implements Codec
func (JSONCodec) Decode(data []byte) (*Clip, error) {
	var clip Clip
	if err := json.Unmarshal(data, &clip); err != nil {
		return nil, fmt.Errorf("failed to parse JSON clip: %w", err)
	}
	return &clip, nil
}
