package project

const (
	DefaultTemplate      = "instagram_story"
	DefaultFPS           = 24
	DefaultSceneDuration = 5.0
	DefaultMusicVolume   = 0.8
	DefaultDecorSize     = 0.15
	defaultTransition    = "fade"
)

// DefaultTextElement returns the element a new text block starts from.
func DefaultTextElement() TextElement {
	return TextElement{
		Text:     "Seu texto aqui",
		FontSize: 48,
		Fill: Fill{
			Type:           FillSolid,
			Color:          "#ffffff",
			GradientColors: []string{"#ffffff", "#cccccc"},
			GradientAngle:  90,
		},
		Position:          Position{X: At(AnchorCenter), Y: At(AnchorCenter)},
		Alignment:         AnchorCenter,
		LineHeight:        1.2,
		BackgroundOpacity: 0.5,
		BackgroundPadding: 20,
		MarginBottom:      20,
	}
}

// DefaultSubtitles returns disabled subtitles with the renderer's default styling.
func DefaultSubtitles() SubtitleConfig {
	return SubtitleConfig{
		Font:        "Arial",
		FontSize:    48,
		Color:       "#FFFFFF",
		StrokeColor: Ptr("#000000"),
		StrokeWidth: 2,
		Position:    [2]Coord{At(AnchorCenter), At(AnchorBottom)},
	}
}

// DefaultScene returns a five second black scene that fades in.
func DefaultScene() Scene {
	return Scene{
		Duration:   Ptr(DefaultSceneDuration),
		Background: Background{Type: BackgroundColor, Color: "#000000"},
		Subtitles:  DefaultSubtitles(),
		Transition: defaultTransition,
	}
}

// DefaultImageScene returns the canvas of a new image project.
func DefaultImageScene() Scene {
	text := DefaultTextElement()
	text.Fill.Color = "#000000"
	return Scene{
		Background:   Background{Type: BackgroundColor, Color: "#ffffff"},
		TextElements: []TextElement{text},
	}
}

func DefaultMusic() Music {
	return Music{Volume: DefaultMusicVolume}
}

// NewVideo returns a one-scene video project on the default template.
func NewVideo() Project {
	return Project{
		Kind:     KindVideo,
		Template: DefaultTemplate,
		FPS:      DefaultFPS,
		Scenes:   []Scene{DefaultScene()},
		Music:    DefaultMusic(),
	}
}

// NewImage returns an image project on the default template.
func NewImage() Project {
	return Project{
		Kind:     KindImage,
		Template: DefaultTemplate,
		Scenes:   []Scene{DefaultImageScene()},
	}
}

func DefaultShadow() Shadow {
	return Shadow{Color: "#000000", OffsetX: 2, OffsetY: 2, Opacity: 0.5, BlurRadius: 3}
}

func DefaultOuterGlow() OuterGlow {
	return OuterGlow{Color: "#FFFF00", Radius: 10, Opacity: 0.8}
}

func DefaultExtrude() Extrude {
	return Extrude{Depth: 5, Color: "#333333", DirectionAngle: 135}
}

func DefaultCurve() Curve {
	return Curve{Radius: 300, Direction: "up"}
}

// DefaultDecoration returns an overlay anchored top left at the default size.
func DefaultDecoration(id string) DecorativeElement {
	return DecorativeElement{
		ID:        id,
		Position:  AnchorTopLeft,
		SizeRatio: DefaultDecorSize,
		Opacity:   1,
	}
}
