package codec

import (
	"encoding/json"

	"vidgen/internal/project"
)

// DefaultEffectDuration is the fixed length, in seconds, attached to every
// transition and animation sent to the renderer.
const DefaultEffectDuration = 1.0

// Effect is the renderer's structured form of a transition or animation.
type Effect struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

func encodeEffect(name string) *Effect {
	if name == "" {
		return nil
	}
	return &Effect{Type: name, Duration: DefaultEffectDuration}
}

func effectName(e *Effect) string {
	if e == nil {
		return ""
	}
	return e.Type
}

// WireTextElement is a text element as the renderer reads it.
type WireTextElement struct {
	project.TextElement
	Animation *Effect `json:"animation"`
}

// UnmarshalJSON seeds the declared defaults so keys dropped by the export
// normalizer come back with their default values.
func (w *WireTextElement) UnmarshalJSON(data []byte) error {
	type alias WireTextElement
	seeded := alias{TextElement: project.DefaultTextElement()}
	if err := json.Unmarshal(data, &seeded); err != nil {
		return err
	}
	*w = WireTextElement(seeded)
	return nil
}

// WireScene is a video scene as the renderer reads it.
type WireScene struct {
	project.Scene
	TextElements []WireTextElement `json:"text_elements"`
	Transition   *Effect           `json:"transition_from_previous"`
}

func (w *WireScene) UnmarshalJSON(data []byte) error {
	type alias WireScene
	seeded := alias{Scene: project.DefaultScene()}
	if err := json.Unmarshal(data, &seeded); err != nil {
		return err
	}
	*w = WireScene(seeded)
	return nil
}

// WireImageScene is the single canvas of an image document.
type WireImageScene struct {
	Background   project.Background `json:"background"`
	TextElements []WireTextElement  `json:"text_elements"`
}

func (w *WireImageScene) UnmarshalJSON(data []byte) error {
	type alias WireImageScene
	seeded := alias{Background: project.DefaultImageScene().Background}
	if err := json.Unmarshal(data, &seeded); err != nil {
		return err
	}
	*w = WireImageScene(seeded)
	return nil
}

// WireVideo is the document accepted by the video generate endpoint.
type WireVideo struct {
	Template    string                      `json:"template"`
	FPS         int                         `json:"fps"`
	Scenes      []WireScene                 `json:"scenes"`
	Music       project.Music               `json:"musica"`
	Decorations []project.DecorativeElement `json:"decorative_elements"`
}

func (w *WireVideo) UnmarshalJSON(data []byte) error {
	type alias WireVideo
	seeded := alias{
		Template: project.DefaultTemplate,
		FPS:      project.DefaultFPS,
		Music:    project.DefaultMusic(),
	}
	if err := json.Unmarshal(data, &seeded); err != nil {
		return err
	}
	*w = WireVideo(seeded)
	return nil
}

// WireImage is the document accepted by the image generate endpoint.
type WireImage struct {
	Template    string                      `json:"template"`
	Scene       *WireImageScene             `json:"scene"`
	Decorations []project.DecorativeElement `json:"decorative_elements"`
}

func (w *WireImage) UnmarshalJSON(data []byte) error {
	type alias WireImage
	seeded := alias{Template: project.DefaultTemplate}
	if err := json.Unmarshal(data, &seeded); err != nil {
		return err
	}
	*w = WireImage(seeded)
	return nil
}

// Document is an encoded project. Exactly one of Video or Image is set,
// matching Kind.
type Document struct {
	Kind  project.Kind
	Video *WireVideo
	Image *WireImage
}

func (d Document) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case project.KindImage:
		return json.Marshal(d.Image)
	default:
		return json.Marshal(d.Video)
	}
}

// Envelope is the request body of the generate endpoints.
type Envelope struct {
	Config Document `json:"config"`
}

// ScenePreview is the request body of the scene preview endpoint.
type ScenePreview struct {
	Template    string                      `json:"template"`
	FPS         int                         `json:"fps"`
	Scene       any                         `json:"scene"`
	Decorations []project.DecorativeElement `json:"decorative_elements"`
}
