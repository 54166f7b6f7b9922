package preview

import (
	"fmt"
	"strings"

	"vidgen/internal/codec"
	"vidgen/internal/project"
	"vidgen/internal/services"
)

type targetKind int

const (
	kindImage targetKind = iota
	kindScene
	kindText
)

func (k targetKind) String() string {
	switch k {
	case kindImage:
		return "image"
	case kindScene:
		return "scene"
	default:
		return "text"
	}
}

// Target selects the part of a project a surface previews.
type Target struct {
	kind    targetKind
	scene   int
	element int
}

// WholeImage previews the single canvas of an image project.
func WholeImage() Target { return Target{kind: kindImage} }

// WholeScene previews scene i of a video project.
func WholeScene(i int) Target { return Target{kind: kindScene, scene: i} }

// TextElement previews one text element on its own.
func TextElement(scene, element int) Target {
	return Target{kind: kindText, scene: scene, element: element}
}

func (t Target) String() string {
	switch t.kind {
	case kindImage:
		return "image"
	case kindScene:
		return fmt.Sprintf("scene[%d]", t.scene)
	default:
		return fmt.Sprintf("scene[%d].text[%d]", t.scene, t.element)
	}
}

// request is a ready-to-send preview call. A nil payload means the surface
// should be cleared without contacting the renderer.
type request struct {
	kind    targetKind
	payload any
}

func (t Target) build(p project.Project, fps int) (request, error) {
	switch t.kind {
	case kindImage, kindScene:
		req, err := codec.ScenePreviewRequest(p, t.scene, fps)
		if err != nil {
			return request{}, err
		}
		return request{kind: t.kind, payload: req}, nil
	default:
		if t.scene < 0 || t.scene >= len(p.Scenes) {
			return request{}, outOfRange(t)
		}
		elements := p.Scenes[t.scene].TextElements
		if t.element < 0 || t.element >= len(elements) {
			return request{}, outOfRange(t)
		}
		el := elements[t.element]
		if strings.TrimSpace(el.Text) == "" {
			return request{kind: kindText}, nil
		}
		return request{kind: kindText, payload: codec.TextPreviewRequest(el)}, nil
	}
}

func outOfRange(t Target) error {
	return services.Wrap(services.ErrValidation, "preview", "build request",
		fmt.Sprintf("%s does not exist in the project", t), nil)
}
