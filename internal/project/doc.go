// Package project holds the canonical composition model for image and video
// projects.
//
// A Project is a plain value: scenes, text elements, audio tracks and
// decorative overlays. Editing code replaces values wholesale through helpers
// such as WithScene so that preview and render requests can hold on to a
// snapshot while the user keeps editing. The package also carries the
// renderer's defaults, the template catalog, and the local preconditions
// (CanGenerate, Validate) that gate submission.
package project
