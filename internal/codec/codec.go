package codec

import (
	"fmt"

	"vidgen/internal/project"
	"vidgen/internal/services"
)

// Encode converts a project into the renderer's document shape. Transitions
// and animations become {type, duration} objects; everything else passes
// through unchanged. Empty collections are emitted as arrays.
func Encode(p project.Project) (Document, error) {
	switch p.Kind {
	case project.KindVideo:
		scenes := make([]WireScene, 0, len(p.Scenes))
		for _, scene := range p.Scenes {
			scenes = append(scenes, EncodeScene(scene))
		}
		return Document{Kind: project.KindVideo, Video: &WireVideo{
			Template:    p.Template,
			FPS:         p.FPS,
			Scenes:      scenes,
			Music:       p.Music,
			Decorations: nonNil(p.Decorations),
		}}, nil
	case project.KindImage:
		if len(p.Scenes) != 1 {
			return Document{}, services.Wrap(services.ErrValidation, "codec", "encode",
				fmt.Sprintf("image project has %d scenes, want 1", len(p.Scenes)), nil)
		}
		scene := EncodeImageScene(p.Scenes[0])
		return Document{Kind: project.KindImage, Image: &WireImage{
			Template:    p.Template,
			Scene:       &scene,
			Decorations: nonNil(p.Decorations),
		}}, nil
	default:
		return Document{}, services.Wrap(services.ErrValidation, "codec", "encode",
			fmt.Sprintf("unknown project kind %q", p.Kind), nil)
	}
}

// Decode is the inverse of Encode. A document without its top-level
// container fails with services.ErrMalformedConfig and yields no project.
func Decode(doc Document) (project.Project, error) {
	switch doc.Kind {
	case project.KindVideo:
		if doc.Video == nil || doc.Video.Scenes == nil {
			return project.Project{}, malformed("video document has no scenes list")
		}
		v := doc.Video
		var scenes []project.Scene
		for _, ws := range v.Scenes {
			scenes = append(scenes, DecodeScene(ws))
		}
		return project.Project{
			Kind:        project.KindVideo,
			Template:    v.Template,
			FPS:         v.FPS,
			Scenes:      scenes,
			Music:       v.Music,
			Decorations: nilIfEmpty(v.Decorations),
		}, nil
	case project.KindImage:
		if doc.Image == nil || doc.Image.Scene == nil {
			return project.Project{}, malformed("image document has no scene object")
		}
		img := doc.Image
		return project.Project{
			Kind:     project.KindImage,
			Template: img.Template,
			Scenes: []project.Scene{{
				Background:   img.Scene.Background,
				TextElements: decodeTextElements(img.Scene.TextElements),
			}},
			Decorations: nilIfEmpty(img.Decorations),
		}, nil
	default:
		return project.Project{}, malformed(fmt.Sprintf("unknown document kind %q", doc.Kind))
	}
}

// EncodeScene converts one video scene.
func EncodeScene(scene project.Scene) WireScene {
	ws := WireScene{
		Scene:        scene,
		TextElements: encodeTextElements(scene.TextElements),
		Transition:   encodeEffect(scene.Transition),
	}
	ws.Scene.TextElements = nil
	ws.Scene.Transition = ""
	ws.Effects = nonNil(scene.Effects)
	return ws
}

// EncodeImageScene converts the canvas of an image project.
func EncodeImageScene(scene project.Scene) WireImageScene {
	return WireImageScene{
		Background:   scene.Background,
		TextElements: encodeTextElements(scene.TextElements),
	}
}

// EncodeTextElement converts one text element.
func EncodeTextElement(el project.TextElement) WireTextElement {
	wt := WireTextElement{TextElement: el, Animation: encodeEffect(el.Animation)}
	wt.TextElement.Animation = ""
	wt.Fill.GradientColors = nonNil(el.Fill.GradientColors)
	return wt
}

// DecodeScene flattens a wire scene back to the model.
func DecodeScene(ws WireScene) project.Scene {
	scene := ws.Scene
	scene.TextElements = decodeTextElements(ws.TextElements)
	scene.Transition = effectName(ws.Transition)
	scene.Effects = nilIfEmpty(scene.Effects)
	return scene
}

func DecodeTextElement(wt WireTextElement) project.TextElement {
	el := wt.TextElement
	el.Animation = effectName(wt.Animation)
	el.Fill.GradientColors = nilIfEmpty(el.Fill.GradientColors)
	return el
}

func encodeTextElements(elements []project.TextElement) []WireTextElement {
	out := make([]WireTextElement, 0, len(elements))
	for _, el := range elements {
		out = append(out, EncodeTextElement(el))
	}
	return out
}

func decodeTextElements(elements []WireTextElement) []project.TextElement {
	var out []project.TextElement
	for _, wt := range elements {
		out = append(out, DecodeTextElement(wt))
	}
	return out
}

// ScenePreviewRequest builds the low-cost preview body for scene i. Image
// previews render a still frame, so animations are dropped.
func ScenePreviewRequest(p project.Project, i, fps int) (ScenePreview, error) {
	if i < 0 || i >= len(p.Scenes) {
		return ScenePreview{}, services.Wrap(services.ErrValidation, "codec", "scene preview",
			fmt.Sprintf("scene %d out of range", i), nil)
	}
	req := ScenePreview{
		Template:    p.Template,
		FPS:         fps,
		Decorations: nonNil(p.Decorations),
	}
	if p.Kind == project.KindImage {
		scene := EncodeImageScene(p.Scenes[i])
		for j := range scene.TextElements {
			scene.TextElements[j].Animation = nil
		}
		req.Scene = scene
		return req, nil
	}
	req.Scene = EncodeScene(p.Scenes[i])
	return req, nil
}

// TextPreviewRequest builds the preview body for a single text element. The
// preview is a still, so the animation is always null.
func TextPreviewRequest(el project.TextElement) WireTextElement {
	wt := EncodeTextElement(el)
	wt.Animation = nil
	return wt
}

// NewEnvelope encodes p and wraps it for the generate endpoints.
func NewEnvelope(p project.Project) (Envelope, error) {
	doc, err := Encode(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Config: doc}, nil
}

func malformed(message string) error {
	return services.Wrap(services.ErrMalformedConfig, "codec", "decode", message, nil)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
