package project

import (
	"errors"
	"fmt"
	"strings"

	"vidgen/internal/services"
)

var (
	horizontalAnchors = map[string]struct{}{AnchorLeft: {}, AnchorCenter: {}, AnchorRight: {}}
	verticalAnchors   = map[string]struct{}{AnchorTop: {}, AnchorCenter: {}, AnchorBottom: {}, AnchorAuto: {}}
	decorAnchors      = map[string]struct{}{
		AnchorTopLeft: {}, AnchorTopRight: {}, AnchorBottomLeft: {}, AnchorBottomRight: {}, AnchorTopCenter: {},
	}
	fillTypes       = map[string]struct{}{FillSolid: {}, FillGradient: {}, FillTexture: {}}
	backgroundTypes = map[string]struct{}{BackgroundColor: {}, BackgroundImage: {}, BackgroundVideo: {}}
	alignments      = map[string]struct{}{AnchorLeft: {}, AnchorCenter: {}, AnchorRight: {}}
)

// Validate checks structural invariants that the renderer relies on. All
// problems are reported together, wrapped with services.ErrValidation.
func Validate(p Project) error {
	errs := Problems(p)
	if len(errs) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "project", "validate", "project is invalid", errors.Join(errs...))
}

// Problems lists every structural problem of p, in document order.
func Problems(p Project) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch p.Kind {
	case KindVideo:
		if p.FPS <= 0 {
			fail("fps must be positive")
		}
		checkVolume(fail, "music", p.Music.Volume)
	case KindImage:
		if len(p.Scenes) != 1 {
			fail("image project must hold exactly one scene, has %d", len(p.Scenes))
		}
		if p.FPS != 0 || p.Music != (Music{}) {
			fail("image project must not set fps or music")
		}
	default:
		fail("unknown project kind %q", p.Kind)
	}
	if strings.TrimSpace(p.Template) == "" {
		fail("template is required")
	}

	for i, scene := range p.Scenes {
		validateScene(fail, p.Kind, i, scene)
	}
	for i, decor := range p.Decorations {
		prefix := fmt.Sprintf("decorative element %d", i)
		if _, ok := decorAnchors[decor.Position]; !ok {
			fail("%s: unknown position %q", prefix, decor.Position)
		}
		if decor.Path == nil && decor.Base64 == nil {
			fail("%s: needs a path or embedded data", prefix)
		}
		checkUnit(fail, prefix+" opacity", decor.Opacity)
		if decor.SizeRatio <= 0 || decor.SizeRatio > 1 {
			fail("%s: size ratio %.2f outside (0, 1]", prefix, decor.SizeRatio)
		}
	}

	return errs
}

func validateScene(fail func(string, ...any), kind Kind, i int, scene Scene) {
	prefix := fmt.Sprintf("scene %d", i)
	if _, ok := backgroundTypes[scene.Background.Type]; !ok {
		fail("%s: unknown background type %q", prefix, scene.Background.Type)
	}
	if scene.Background.Type != BackgroundColor && strings.TrimSpace(scene.Background.Path) == "" {
		fail("%s: %s background needs a path", prefix, scene.Background.Type)
	}
	if scene.Duration != nil && *scene.Duration <= 0 {
		fail("%s: duration must be positive", prefix)
	}
	if kind == KindImage && hasVideoOnlyFields(scene) {
		fail("%s: image scenes cannot carry duration, audio, subtitles or transitions", prefix)
	}
	if kind == KindVideo && scene.Duration == nil && scene.Narration == nil {
		fail("%s: duration is required without narration", prefix)
	}
	if scene.Narration != nil {
		checkVolume(fail, prefix+" narration", scene.Narration.Volume)
	}
	for j, track := range scene.Effects {
		checkVolume(fail, fmt.Sprintf("%s effect %d", prefix, j), track.Volume)
	}
	for j, el := range scene.TextElements {
		elPrefix := fmt.Sprintf("%s text %d", prefix, j)
		if _, ok := fillTypes[el.Fill.Type]; !ok {
			fail("%s: unknown fill type %q", elPrefix, el.Fill.Type)
		}
		if el.Fill.Type == FillTexture && (el.Fill.ImagePath == nil || *el.Fill.ImagePath == "") {
			fail("%s: texture fill needs an image path", elPrefix)
		}
		if _, ok := alignments[el.Alignment]; !ok {
			fail("%s: unknown alignment %q", elPrefix, el.Alignment)
		}
		if !el.Position.X.IsNumeric() {
			if _, ok := horizontalAnchors[el.Position.X.Anchor]; !ok {
				fail("%s: unknown horizontal anchor %q", elPrefix, el.Position.X.Anchor)
			}
		}
		if !el.Position.Y.IsNumeric() {
			if _, ok := verticalAnchors[el.Position.Y.Anchor]; !ok {
				fail("%s: unknown vertical anchor %q", elPrefix, el.Position.Y.Anchor)
			}
		}
		checkUnit(fail, elPrefix+" background opacity", el.BackgroundOpacity)
		if el.FontSize <= 0 {
			fail("%s: font size must be positive", elPrefix)
		}
	}
}

func hasVideoOnlyFields(scene Scene) bool {
	return scene.Duration != nil ||
		scene.Narration != nil ||
		len(scene.Effects) > 0 ||
		scene.Subtitles != (SubtitleConfig{}) ||
		scene.Transition != ""
}

func checkVolume(fail func(string, ...any), what string, v float64) {
	checkUnit(fail, what+" volume", v)
}

func checkUnit(fail func(string, ...any), what string, v float64) {
	if v < 0 || v > 1 {
		fail("%s %.2f outside [0, 1]", what, v)
	}
}
