package gltf_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"lathe/internal/gltf"
	"lathe/internal/scene"
)

const sampleJSON = `{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"name": "part-studio", "nodes": [0]}],
	"nodes": [
		{"name": "housing", "translation": [1, 2, 3], "children": [1]},
		{"name": "shell", "mesh": 0}
	],
	"meshes": [
		{"name": "shell-mesh", "primitives": [
			{"attributes": {"POSITION": 0}, "material": 0},
			{"attributes": {"POSITION": 1}}
		]}
	],
	"accessors": [
		{"min": [-1, -2, -3], "max": [1, 2, 3]},
		{"min": [0, 0, 0], "max": [4, 0, 0]}
	],
	"materials": [
		{"name": "steel", "pbrMetallicRoughness": {"baseColorTexture": {"index": 2}}, "emissiveTexture": {"index": 5}}
	]
}`

func TestDecodeJSONGraph(t *testing.T) {
	graph, err := gltf.NewDecoder().Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(graph.Root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(graph.Root.Children))
	}
	housing := graph.Root.Children[0]
	if housing.Name != "housing" {
		t.Errorf("node name = %q, want housing", housing.Name)
	}
	if housing.Position != (scene.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("node position = %+v", housing.Position)
	}
	if len(housing.Children) != 1 || housing.Children[0].Mesh == nil {
		t.Fatalf("expected one mesh-bearing child under housing")
	}

	prims := housing.Children[0].Mesh.Primitives
	if len(prims) != 2 {
		t.Fatalf("primitives = %d, want 2", len(prims))
	}
	wantBounds := scene.Box3{Min: scene.Vec3{X: -1, Y: -2, Z: -3}, Max: scene.Vec3{X: 1, Y: 2, Z: 3}}
	if prims[0].Bounds != wantBounds {
		t.Errorf("primitive bounds = %+v, want %+v", prims[0].Bounds, wantBounds)
	}
	if prims[1].Material != nil {
		t.Errorf("second primitive should have no material")
	}
}

func TestDecodeMaterials(t *testing.T) {
	graph, err := gltf.NewDecoder().Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(graph.Materials) != 1 {
		t.Fatalf("materials = %d, want 1", len(graph.Materials))
	}
	mat := graph.Materials[0]
	if mat.Name != "steel" {
		t.Errorf("material name = %q", mat.Name)
	}
	if mat.BaseColor == nil || mat.BaseColor.Index != 2 {
		t.Errorf("base color texture = %+v", mat.BaseColor)
	}
	if mat.BaseColor.ColorSpace != scene.ColorSpaceLinear {
		t.Errorf("decoded color space = %q, want linear", mat.BaseColor.ColorSpace)
	}
	if mat.Emissive == nil || mat.Emissive.Index != 5 {
		t.Errorf("emissive texture = %+v", mat.Emissive)
	}

	// The primitive must reference the shared material instance so that
	// manager normalization reaches every use.
	prim := graph.Root.Children[0].Children[0].Mesh.Primitives[0]
	if prim.Material != mat {
		t.Errorf("primitive material is not the shared instance")
	}
}

func TestDecodeGraphBounds(t *testing.T) {
	graph, err := gltf.NewDecoder().Decode([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// Node translation (1,2,3) offsets both primitive boxes.
	box := graph.BoundingBox()
	want := scene.Box3{Min: scene.Vec3{X: 0, Y: 0, Z: 0}, Max: scene.Vec3{X: 5, Y: 4, Z: 6}}
	if box != want {
		t.Errorf("bounding box = %+v, want %+v", box, want)
	}
}

func glbPayload(t *testing.T, jsonBody string) []byte {
	t.Helper()
	body := []byte(jsonBody)
	for len(body)%4 != 0 {
		body = append(body, ' ')
	}
	var buf bytes.Buffer
	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], 0x46546C67)
	binary.LittleEndian.PutUint32(header[4:8], 2)
	binary.LittleEndian.PutUint32(header[8:12], uint32(12+8+len(body)))
	buf.Write(header)
	chunk := make([]byte, 8)
	binary.LittleEndian.PutUint32(chunk[0:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(chunk[4:8], 0x4E4F534A)
	buf.Write(chunk)
	buf.Write(body)
	return buf.Bytes()
}

func TestDecodeGLBContainer(t *testing.T) {
	graph, err := gltf.NewDecoder().Decode(glbPayload(t, sampleJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(graph.Root.Children) != 1 || graph.Root.Children[0].Name != "housing" {
		t.Errorf("GLB decode produced unexpected graph root")
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	badVersion := glbPayload(t, sampleJSON)
	binary.LittleEndian.PutUint32(badVersion[4:8], 1)

	cases := []struct {
		name    string
		payload []byte
		wantErr string
	}{
		{"empty", nil, "empty payload"},
		{"not JSON", []byte("<html>"), "parse glTF JSON"},
		{"wrong asset version", []byte(`{"asset": {"version": "1.0"}}`), "unsupported glTF version"},
		{"GLB version 1", badVersion, "unsupported GLB version"},
		{"truncated GLB chunk", glbPayload(t, sampleJSON)[:30], "truncated"},
		{"node index out of range", []byte(`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[4]}],"nodes":[]}`), "out of range"},
		{"node cycle", []byte(`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"children":[0]}]}`), "cycle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := gltf.NewDecoder().Decode(tc.payload); err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Decode() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestDecodeWithoutDeclaredScene(t *testing.T) {
	payload := []byte(`{"asset":{"version":"2.0"},"nodes":[{"name":"a"},{"name":"b"}]}`)
	graph, err := gltf.NewDecoder().Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(graph.Root.Children) != 2 {
		t.Errorf("root children = %d, want 2", len(graph.Root.Children))
	}
}
