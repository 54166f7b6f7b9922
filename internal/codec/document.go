package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"vidgen/internal/project"
	"vidgen/internal/services"
)

// Format selects the text encoding of exported documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", name)
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseDocument reads an imported document. Both JSON and YAML are accepted,
// either bare or wrapped as {config: ...}. An empty kind is inferred from the
// container present. The container is checked before any typed decoding so a
// malformed document never yields a partial project.
func ParseDocument(data []byte, kind project.Kind) (project.Project, error) {
	generic, err := parseGeneric(data)
	if err != nil {
		return project.Project{}, err
	}
	root, ok := generic.(map[string]any)
	if !ok {
		return project.Project{}, malformed("document must be an object")
	}
	if inner, ok := root["config"].(map[string]any); ok {
		root = inner
	}

	if kind == "" {
		kind = detectKind(root)
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return project.Project{}, services.Wrap(services.ErrMalformedConfig, "codec", "parse", "re-encode document", err)
	}

	doc := Document{Kind: kind}
	switch kind {
	case project.KindVideo:
		if _, ok := root["scenes"].([]any); !ok {
			return project.Project{}, malformed("video document has no scenes list")
		}
		doc.Video = &WireVideo{}
		if err := json.Unmarshal(raw, doc.Video); err != nil {
			return project.Project{}, services.Wrap(services.ErrMalformedConfig, "codec", "parse", "video document", err)
		}
	case project.KindImage:
		if _, ok := root["scene"].(map[string]any); !ok {
			return project.Project{}, malformed("image document has no scene object")
		}
		doc.Image = &WireImage{}
		if err := json.Unmarshal(raw, doc.Image); err != nil {
			return project.Project{}, services.Wrap(services.ErrMalformedConfig, "codec", "parse", "image document", err)
		}
	default:
		return project.Project{}, malformed("document has neither a scenes list nor a scene object")
	}
	return Decode(doc)
}

func detectKind(root map[string]any) project.Kind {
	if _, ok := root["scenes"]; ok {
		return project.KindVideo
	}
	if _, ok := root["scene"]; ok {
		return project.KindImage
	}
	return ""
}

func parseGeneric(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed("document is empty")
	}
	var generic any
	jsonErr := json.Unmarshal(trimmed, &generic)
	if jsonErr == nil {
		return generic, nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return nil, services.Wrap(services.ErrMalformedConfig, "codec", "parse", "invalid json", jsonErr)
	}
	if err := yaml.Unmarshal(trimmed, &generic); err != nil {
		return nil, services.Wrap(services.ErrMalformedConfig, "codec", "parse", "invalid yaml", err)
	}
	return generic, nil
}

// Export encodes p and normalizes it for a human-facing download.
func Export(p project.Project, format Format) ([]byte, error) {
	doc, err := Encode(p)
	if err != nil {
		return nil, err
	}
	generic, err := toGeneric(doc)
	if err != nil {
		return nil, err
	}
	return render(NormalizeForExport(generic), format)
}

// Marshal encodes p without normalization. This is the canonical on-disk
// project file and the exact payload the renderer receives.
func Marshal(p project.Project) ([]byte, error) {
	doc, err := Encode(p)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(out, '\n'), nil
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return generic, nil
}

func render(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
