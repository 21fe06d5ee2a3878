// Package gltf decodes glTF 2.0 payloads into renderable scene graphs.
//
// The decoder reads structure only: the node hierarchy, per-primitive bounds
// taken from the POSITION accessor min/max, and material texture references.
// Geometry buffers are never parsed; bounds come straight from the accessor
// metadata the format requires for positions.
package gltf

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lathe/internal/scene"
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
)

// Decoder implements the scene-loader capability for glTF payloads, accepting
// both the JSON text form and the GLB binary container.
type Decoder struct{}

// NewDecoder returns a glTF decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

type document struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Scene  *int `json:"scene"`
	Scenes []struct {
		Name  string `json:"name"`
		Nodes []int  `json:"nodes"`
	} `json:"scenes"`
	Nodes     []docNode     `json:"nodes"`
	Meshes    []docMesh     `json:"meshes"`
	Accessors []docAccessor `json:"accessors"`
	Materials []docMaterial `json:"materials"`
}

type docNode struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Children    []int     `json:"children"`
	Translation []float64 `json:"translation"`
}

type docMesh struct {
	Name       string         `json:"name"`
	Primitives []docPrimitive `json:"primitives"`
}

type docPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Material   *int           `json:"material"`
}

type docAccessor struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

type textureInfo struct {
	Index int `json:"index"`
}

type docMaterial struct {
	Name string `json:"name"`
	PBR  *struct {
		BaseColorTexture *textureInfo `json:"baseColorTexture"`
	} `json:"pbrMetallicRoughness"`
	EmissiveTexture *textureInfo `json:"emissiveTexture"`
}

// Decode parses a glTF or GLB payload into a scene graph.
func (d *Decoder) Decode(payload []byte) (*scene.Graph, error) {
	if len(payload) == 0 {
		return nil, errors.New("empty payload")
	}

	jsonBody := payload
	if isGLB(payload) {
		extracted, err := glbJSONChunk(payload)
		if err != nil {
			return nil, err
		}
		jsonBody = extracted
	}

	var doc document
	if err := json.Unmarshal(jsonBody, &doc); err != nil {
		return nil, fmt.Errorf("parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2") {
		return nil, fmt.Errorf("unsupported glTF version %q", doc.Asset.Version)
	}

	return buildGraph(&doc)
}

func isGLB(payload []byte) bool {
	return len(payload) >= 12 && binary.LittleEndian.Uint32(payload[0:4]) == glbMagic
}

func glbJSONChunk(payload []byte) ([]byte, error) {
	if len(payload) < 12 {
		return nil, errors.New("GLB header truncated")
	}
	if version := binary.LittleEndian.Uint32(payload[4:8]); version != glbVersion {
		return nil, fmt.Errorf("unsupported GLB version %d", version)
	}

	rest := payload[12:]
	for len(rest) >= 8 {
		chunkLen := binary.LittleEndian.Uint32(rest[0:4])
		chunkType := binary.LittleEndian.Uint32(rest[4:8])
		rest = rest[8:]
		if uint32(len(rest)) < chunkLen {
			return nil, errors.New("GLB chunk truncated")
		}
		if chunkType == glbChunkJSON {
			return bytes.TrimRight(rest[:chunkLen], "\x00 "), nil
		}
		rest = rest[chunkLen:]
	}
	return nil, errors.New("GLB payload has no JSON chunk")
}

func buildGraph(doc *document) (*scene.Graph, error) {
	materials := make([]*scene.Material, len(doc.Materials))
	for i, mat := range doc.Materials {
		converted := &scene.Material{Name: mat.Name}
		if mat.PBR != nil && mat.PBR.BaseColorTexture != nil {
			converted.BaseColor = &scene.TextureRef{Index: mat.PBR.BaseColorTexture.Index, ColorSpace: scene.ColorSpaceLinear}
		}
		if mat.EmissiveTexture != nil {
			converted.Emissive = &scene.TextureRef{Index: mat.EmissiveTexture.Index, ColorSpace: scene.ColorSpaceLinear}
		}
		materials[i] = converted
	}

	rootIndexes := sceneNodes(doc)
	root := &scene.Node{Name: "model"}
	builder := &graphBuilder{doc: doc, materials: materials}
	for _, index := range rootIndexes {
		child, err := builder.node(index, map[int]bool{})
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}

	return &scene.Graph{Root: root, Materials: materials}, nil
}

func sceneNodes(doc *document) []int {
	index := 0
	if doc.Scene != nil {
		index = *doc.Scene
	}
	if index < 0 || index >= len(doc.Scenes) {
		// Fall back to every node that exists when no scene is declared.
		all := make([]int, len(doc.Nodes))
		for i := range doc.Nodes {
			all[i] = i
		}
		return all
	}
	return doc.Scenes[index].Nodes
}

type graphBuilder struct {
	doc       *document
	materials []*scene.Material
}

func (b *graphBuilder) node(index int, path map[int]bool) (*scene.Node, error) {
	if index < 0 || index >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if path[index] {
		return nil, fmt.Errorf("node cycle through index %d", index)
	}
	path[index] = true
	defer delete(path, index)

	src := b.doc.Nodes[index]
	node := &scene.Node{Name: src.Name}
	if len(src.Translation) == 3 {
		node.Position = scene.Vec3{X: src.Translation[0], Y: src.Translation[1], Z: src.Translation[2]}
	}
	if src.Mesh != nil {
		mesh, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, err
		}
		node.Mesh = mesh
	}
	for _, childIndex := range src.Children {
		child, err := b.node(childIndex, path)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (b *graphBuilder) mesh(index int) (*scene.Mesh, error) {
	if index < 0 || index >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", index)
	}
	src := b.doc.Meshes[index]
	mesh := &scene.Mesh{Name: src.Name}
	for _, prim := range src.Primitives {
		converted := scene.Primitive{Bounds: scene.EmptyBox()}
		if posIndex, ok := prim.Attributes["POSITION"]; ok {
			bounds, err := b.accessorBounds(posIndex)
			if err != nil {
				return nil, err
			}
			converted.Bounds = bounds
		}
		if prim.Material != nil {
			if *prim.Material < 0 || *prim.Material >= len(b.materials) {
				return nil, fmt.Errorf("material index %d out of range", *prim.Material)
			}
			converted.Material = b.materials[*prim.Material]
		}
		mesh.Primitives = append(mesh.Primitives, converted)
	}
	return mesh, nil
}

func (b *graphBuilder) accessorBounds(index int) (scene.Box3, error) {
	if index < 0 || index >= len(b.doc.Accessors) {
		return scene.Box3{}, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := b.doc.Accessors[index]
	if len(acc.Min) != 3 || len(acc.Max) != 3 {
		// Bounds metadata is optional for non-position accessors; a
		// position accessor without it contributes no extent.
		return scene.EmptyBox(), nil
	}
	return scene.Box3{
		Min: scene.Vec3{X: acc.Min[0], Y: acc.Min[1], Z: acc.Min[2]},
		Max: scene.Vec3{X: acc.Max[0], Y: acc.Max[1], Z: acc.Max[2]},
	}, nil
}
