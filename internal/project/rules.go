package project

import (
	"slices"
	"strings"
)

// CanGenerate reports whether the project describes a non-degenerate render:
// some scene carries a text element or references a background asset.
func CanGenerate(p Project) bool {
	for _, scene := range p.Scenes {
		if len(scene.TextElements) > 0 {
			return true
		}
		if strings.TrimSpace(scene.Background.Path) != "" {
			return true
		}
	}
	return false
}

// FirstAutoIndex returns the index of the first element whose vertical
// position is auto, or -1 when none is.
func FirstAutoIndex(elements []TextElement) int {
	return slices.IndexFunc(elements, func(el TextElement) bool {
		return el.Position.Y.IsAuto()
	})
}

// EffectiveVerticalOffset returns the vertical pixel offset the renderer
// applies to element i of the scene. Only the first auto-positioned element
// honors its offset; every other element gets zero.
func EffectiveVerticalOffset(scene Scene, i int) float64 {
	if i < 0 || i >= len(scene.TextElements) || i != FirstAutoIndex(scene.TextElements) {
		return 0
	}
	if off := scene.TextElements[i].VerticalOffset; off != nil {
		return *off
	}
	return 0
}

// EffectiveDuration resolves how long the scene plays. While narration is
// set its length is authoritative and the stored Duration is kept untouched
// for when narration is removed. The second result is false when the length
// cannot be known yet.
func (s Scene) EffectiveDuration(narrationSeconds float64) (float64, bool) {
	if s.Narration != nil {
		if narrationSeconds > 0 {
			return narrationSeconds, true
		}
		return 0, false
	}
	if s.Duration != nil {
		return *s.Duration, true
	}
	return 0, false
}

// WithScene returns a copy of p with scene i replaced.
func (p Project) WithScene(i int, scene Scene) Project {
	if i < 0 || i >= len(p.Scenes) {
		return p
	}
	scenes := slices.Clone(p.Scenes)
	scenes[i] = scene
	p.Scenes = scenes
	return p
}

// WithTextElement returns a copy of p with one text element replaced.
func (p Project) WithTextElement(sceneIdx, elemIdx int, el TextElement) Project {
	if sceneIdx < 0 || sceneIdx >= len(p.Scenes) {
		return p
	}
	scene := p.Scenes[sceneIdx]
	if elemIdx < 0 || elemIdx >= len(scene.TextElements) {
		return p
	}
	elements := slices.Clone(scene.TextElements)
	elements[elemIdx] = el
	scene.TextElements = elements
	return p.WithScene(sceneIdx, scene)
}

// AppendScene returns a copy of p with scene added at the end.
func (p Project) AppendScene(scene Scene) Project {
	p.Scenes = append(slices.Clip(p.Scenes), scene)
	return p
}
