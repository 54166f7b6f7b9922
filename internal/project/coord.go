package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Named anchors accepted on position axes. AnchorAuto is valid on the
// vertical axis only and stacks the element after the previous auto element.
const (
	AnchorLeft   = "left"
	AnchorRight  = "right"
	AnchorTop    = "top"
	AnchorBottom = "bottom"
	AnchorCenter = "center"
	AnchorAuto   = "auto"
)

// Coord is one position axis: either a pixel value or a named anchor.
// A Coord with an empty Anchor is numeric.
type Coord struct {
	Anchor string
	Pixels float64
}

// At returns a named-anchor coordinate.
func At(anchor string) Coord { return Coord{Anchor: anchor} }

// Px returns a numeric coordinate.
func Px(v float64) Coord { return Coord{Pixels: v} }

// Auto returns the vertical "stack after previous" coordinate.
func Auto() Coord { return Coord{Anchor: AnchorAuto} }

func (c Coord) IsAuto() bool { return c.Anchor == AnchorAuto }

func (c Coord) IsNumeric() bool { return c.Anchor == "" }

func (c Coord) String() string {
	if c.IsNumeric() {
		return strconv.FormatFloat(c.Pixels, 'f', -1, 64)
	}
	return c.Anchor
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if c.IsNumeric() {
		return json.Marshal(c.Pixels)
	}
	return json.Marshal(c.Anchor)
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Coord{}
		return nil
	}
	if trimmed[0] == '"' {
		var anchor string
		if err := json.Unmarshal(trimmed, &anchor); err != nil {
			return err
		}
		*c = Coord{Anchor: anchor}
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("coordinate must be a number or an anchor name: %w", err)
	}
	*c = Coord{Pixels: v}
	return nil
}

// Position places an element; each axis is independent.
type Position struct {
	X Coord `json:"x"`
	Y Coord `json:"y"`
}

// UnmarshalJSON replaces the background wholesale instead of merging into the
// existing value.
func (b *Background) UnmarshalJSON(data []byte) error {
	type alias Background
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*b = Background(decoded)
	return nil
}
