package project

// Kind selects which renderer a project targets.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Project is the canonical in-memory composition. An image project holds
// exactly one scene in Scenes. Empty collections are nil.
//
// Values are treated as immutable snapshots: helpers that change a project
// return a copy and leave the receiver's slices untouched.
//
// Field tags describe the renderer's wire shape for the parts that pass
// through unchanged; transitions, animations and element lists are shaped by
// the codec.
type Project struct {
	Kind        Kind
	Template    string
	FPS         int
	Scenes      []Scene
	Music       Music
	Decorations []DecorativeElement
}

// Scene is one timed segment of a video, or the single canvas of an image.
type Scene struct {
	// Duration in seconds. Nil means "derived from narration length".
	Duration     *float64       `json:"duration"`
	Background   Background     `json:"background"`
	TextElements []TextElement  `json:"-"`
	Narration    *AudioTrack    `json:"narration"`
	Effects      []AudioTrack   `json:"effects_audio"`
	Subtitles    SubtitleConfig `json:"subtitles"`
	// Transition names the transition from the previous scene; "" means none.
	Transition string `json:"-"`
}

// TextElement is a styled block of text placed on a scene.
type TextElement struct {
	Text                   string   `json:"text"`
	Font                   *string  `json:"font"`
	FontSize               float64  `json:"font_size"`
	Fill                   Fill     `json:"fill"`
	Position               Position `json:"position"`
	Alignment              string   `json:"alignment"`
	LineHeight             float64  `json:"line_height"`
	BackgroundColor        *string  `json:"background_color"`
	BackgroundOpacity      float64  `json:"background_opacity"`
	BorderColor            *string  `json:"border_color"`
	BorderWidth            float64  `json:"border_width"`
	BackgroundPadding      float64  `json:"background_padding"`
	BackgroundBorderRadius float64  `json:"background_border_radius"`
	StrokeColor            *string  `json:"stroke_color"`
	StrokeWidth            float64  `json:"stroke_width"`
	Shadow                 *Shadow  `json:"shadow"`
	MarginBottom           float64  `json:"margin_bottom"`
	// VerticalOffset only takes effect on the first auto-positioned element of a scene.
	VerticalOffset *float64   `json:"vertical_offset"`
	OuterGlow      *OuterGlow `json:"outer_glow"`
	Extrude        *Extrude   `json:"extrude"`
	Curve          *Curve     `json:"curve"`
	// Animation names the entry animation; "" means none.
	Animation string `json:"-"`
}

// Fill types.
const (
	FillSolid    = "solid"
	FillGradient = "gradient"
	FillTexture  = "texture"
)

type Fill struct {
	Type           string   `json:"type"`
	Color          string   `json:"color"`
	GradientColors []string `json:"gradient_colors"`
	GradientAngle  float64  `json:"gradient_angle"`
	ImagePath      *string  `json:"image_path"`
}

type Shadow struct {
	Color      string  `json:"color"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`
	Opacity    float64 `json:"opacity"`
	BlurRadius float64 `json:"blur_radius"`
}

type OuterGlow struct {
	Color   string  `json:"color"`
	Radius  float64 `json:"radius"`
	Opacity float64 `json:"opacity"`
}

// Extrude draws a pseudo-3D offset copy of the glyphs.
type Extrude struct {
	Depth          float64 `json:"depth"`
	Color          string  `json:"color"`
	DirectionAngle float64 `json:"direction_angle"`
}

// Curve bends the text along an arc.
type Curve struct {
	Radius    float64 `json:"radius"`
	Direction string  `json:"direction"`
}

// Background types.
const (
	BackgroundColor = "color"
	BackgroundImage = "image"
	BackgroundVideo = "video"
)

type Background struct {
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Path  string `json:"path,omitempty"`
}

// AudioTrack references an uploaded audio asset.
type AudioTrack struct {
	Path   string  `json:"path"`
	Volume float64 `json:"volume"`
}

// Music is the project-wide background music.
type Music struct {
	Enabled bool    `json:"enabled"`
	Path    *string `json:"path"`
	Volume  float64 `json:"volume"`
}

type SubtitleConfig struct {
	Enabled     bool     `json:"enabled"`
	Font        string   `json:"font"`
	FontSize    float64  `json:"font_size"`
	Color       string   `json:"color"`
	StrokeColor *string  `json:"stroke_color"`
	StrokeWidth float64  `json:"stroke_width"`
	Position    [2]Coord `json:"position"`
}

// Decorative element anchors.
const (
	AnchorTopLeft     = "top_left"
	AnchorTopRight    = "top_right"
	AnchorBottomLeft  = "bottom_left"
	AnchorBottomRight = "bottom_right"
	AnchorTopCenter   = "top_center"
)

// DecorativeElement is an image overlay shared by every scene.
type DecorativeElement struct {
	ID         string   `json:"id"`
	Path       *string  `json:"path"`
	Base64     *string  `json:"base64"`
	Position   string   `json:"position"`
	WidthRatio *float64 `json:"width_ratio"`
	SizeRatio  float64  `json:"size_ratio"`
	OffsetY    float64  `json:"offset_y"`
	Opacity    float64  `json:"opacity"`
}

// Ptr returns a pointer to v. Handy for the nullable fields of the model.
func Ptr[T any](v T) *T {
	return &v
}
