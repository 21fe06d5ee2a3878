package viewer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const exportExtension = ".gltf"

// Filename returns the download filename for the current selection: the label
// decomposed with NFKD, every character outside [A-Za-z0-9_.-] replaced by an
// underscore, with the model file extension appended.
func (c *Controller) Filename() string {
	c.mu.Lock()
	label := c.selected
	c.mu.Unlock()
	if label == "" {
		label = "model"
	}
	return sanitizeLabel(label) + exportExtension
}

func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(label) {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
