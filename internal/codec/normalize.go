package codec

import "strings"

const fontKey = "font"

// NormalizeForExport strips a generic document down to what a human needs to
// read. Font paths are cut to their final segment, then map entries that are
// null or empty arrays are dropped. Null array items are dropped too; empty
// objects and zero values are kept. The input is not modified and the result
// is a fixed point: normalizing it again changes nothing.
func NormalizeForExport(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(value))
		for _, item := range value {
			if cleaned := NormalizeForExport(item); cleaned != nil {
				out = append(out, cleaned)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			if key == fontKey {
				item = truncateFont(item)
			}
			cleaned := NormalizeForExport(item)
			if cleaned == nil {
				continue
			}
			if arr, ok := cleaned.([]any); ok && len(arr) == 0 {
				continue
			}
			out[key] = cleaned
		}
		return out
	default:
		return v
	}
}

// truncateFont keeps the file name of a font path. A path with no final
// segment becomes nil so the caller elides it.
func truncateFont(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return nil
	}
	return s
}
