package scene

// ActiveModelName is the reserved node name the loaded model graph lives
// under. At most one node with this name exists in the scene at any time.
const ActiveModelName = "loaded-model"

// ColorSpace identifies the color encoding of a texture map.
type ColorSpace string

const (
	ColorSpaceLinear ColorSpace = "linear"
	ColorSpaceSRGB   ColorSpace = "srgb"
)

// TextureRef points at a texture used by a material.
type TextureRef struct {
	Index      int
	ColorSpace ColorSpace
}

// Material describes the surface appearance of a primitive. Base-color and
// emissive maps carry a color encoding that the manager normalizes on load.
type Material struct {
	Name        string
	BaseColor   *TextureRef
	Emissive    *TextureRef
	NeedsUpload bool
}

// Primitive is one drawable piece of a mesh with its own bounds and material.
type Primitive struct {
	Bounds   Box3
	Material *Material
}

// Mesh groups the primitives referenced by a node.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Light is a non-geometry scene contribution attached to a node.
type Light struct {
	Kind      string
	Intensity float64
}

// Node is one element of the scene hierarchy.
type Node struct {
	Name     string
	Position Vec3
	Mesh     *Mesh
	Light    *Light
	Children []*Node
}

// Graph is the decoded, renderable representation of one loaded model.
type Graph struct {
	Root      *Node
	Materials []*Material
}

// BoundingBox returns the axis-aligned box enclosing all geometry of the
// graph, in the graph's current position.
func (g *Graph) BoundingBox() Box3 {
	if g == nil || g.Root == nil {
		return EmptyBox()
	}
	return nodeBounds(g.Root, Vec3{})
}

func nodeBounds(node *Node, parentOffset Vec3) Box3 {
	box := EmptyBox()
	if node == nil {
		return box
	}
	offset := parentOffset.Add(node.Position)
	if node.Mesh != nil {
		for _, prim := range node.Mesh.Primitives {
			box = box.Union(prim.Bounds.Translate(offset))
		}
	}
	for _, child := range node.Children {
		box = box.Union(nodeBounds(child, offset))
	}
	return box
}

// FindChild returns the direct child with the given name, or nil.
func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// RemoveChild detaches the direct child with the given name and reports
// whether anything was removed.
func (n *Node) RemoveChild(name string) bool {
	if n == nil {
		return false
	}
	for i, child := range n.Children {
		if child.Name == name {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}
