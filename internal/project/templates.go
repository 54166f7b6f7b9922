package project

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template describes an output format offered by the renderer.
type Template struct {
	Name        string
	Width       int
	Height      int
	FPS         int
	AspectRatio string
	Description string
}

var templates = []Template{
	{Name: "instagram_feed", Width: 1080, Height: 1350, FPS: 24, AspectRatio: "4:5", Description: "Instagram feed posts"},
	{Name: "instagram_story", Width: 1080, Height: 1920, FPS: 24, AspectRatio: "9:16", Description: "Instagram stories"},
	{Name: "facebook_feed", Width: 1200, Height: 630, FPS: 24, AspectRatio: "16:9", Description: "Facebook feed posts"},
	{Name: "youtube_thumbnail", Width: 1280, Height: 720, FPS: 24, AspectRatio: "16:9", Description: "YouTube video thumbnails"},
	{Name: "tiktok", Width: 1080, Height: 1920, FPS: 24, AspectRatio: "9:16", Description: "Vertical TikTok videos"},
	{Name: "custom", Width: 1920, Height: 1080, FPS: 24, AspectRatio: "16:9", Description: "Custom dimensions"},
}

// Templates returns the template catalog in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate finds a template by name.
func LookupTemplate(name string) (Template, bool) {
	name = strings.TrimSpace(name)
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Label renders the template name for display, e.g. "Instagram Story".
func (t Template) Label() string {
	return cases.Title(language.Und).String(strings.ReplaceAll(t.Name, "_", " "))
}
