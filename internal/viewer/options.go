package viewer

import (
	"context"
	"fmt"

	"lathe/internal/onshape"
)

// PlaceholderLabel is the first selector entry; choosing it clears the scene.
const PlaceholderLabel = "Select an Element"

// Option is one selector entry. The placeholder and elements of
// non-translatable types carry no element parameters.
type Option struct {
	Label       string `json:"label"`
	Placeholder bool   `json:"placeholder,omitempty"`
	ElementID   string `json:"elementId,omitempty"`
	PartID      string `json:"partId,omitempty"`
}

// Translatable reports whether selecting the option can start a translation.
func (o Option) Translatable() bool {
	return o.ElementID != ""
}

// LoadDirectory fetches the element directory and rebuilds the option list.
// Part studios expand to one option per part; assemblies are one option each.
// Elements of other types are listed but carry no parameters, so selecting
// them is a selection error.
func (c *Controller) LoadDirectory(ctx context.Context) ([]Option, error) {
	elements, err := c.client.Elements(ctx, c.documentID, c.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load element directory: %w", err)
	}

	options := []Option{{Label: PlaceholderLabel, Placeholder: true}}
	for _, element := range elements {
		switch element.ElementType {
		case onshape.ElementTypePartStudio:
			parts, err := c.client.Parts(ctx, c.documentID, c.workspaceID, element.ID)
			if err != nil {
				return nil, fmt.Errorf("load parts for %s: %w", element.Name, err)
			}
			for _, part := range parts {
				options = append(options, Option{
					Label:     part.Name,
					ElementID: part.ElementID,
					PartID:    part.PartID,
				})
			}
		case onshape.ElementTypeAssembly:
			options = append(options, Option{Label: element.Name, ElementID: element.ID})
		default:
			options = append(options, Option{Label: element.Name})
		}
	}

	c.mu.Lock()
	c.options = options
	c.mu.Unlock()

	return append([]Option(nil), options...), nil
}

// Options returns a copy of the current option list.
func (c *Controller) Options() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Option(nil), c.options...)
}
