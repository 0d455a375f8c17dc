// Package gltf counts scene complexity in glTF 2.0 containers.
//
// Both accepted container variants are handled: GLB (binary-packed, JSON
// chunk framed behind a 12-byte header) and glTF (plain JSON with external
// buffers). Vertex counting only needs accessor metadata, so buffer
// payloads are never touched.
package gltf

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed - the buffer cannot be decoded as a scene container:
	// bad magic or version, truncated chunk, invalid JSON, broken graph
	// references.
	ErrMalformed = errors.New("malformed scene container")

	// ErrUnsupported - the container decoded, but a mesh carries geometry
	// that cannot be interpreted (missing required attribute data).
	ErrUnsupported = errors.New("unsupported scene structure")
)

// GLB framing constants from the glTF 2.0 specification.
const (
	glbMagic     uint32 = 0x46546C67 // "glTF"
	glbVersion   uint32 = 2
	chunkTypeJSON uint32 = 0x4E4F534A // "JSON"
	chunkTypeBIN  uint32 = 0x004E4942 // "BIN\0"

	glbHeaderSize = 12
	chunkHeaderSize = 8

	positionAttribute = "POSITION"
)

// document mirrors the subset of the glTF schema the counter needs.
type document struct {
	Scenes    []scene    `json:"scenes"`
	Nodes     []node     `json:"nodes"`
	Meshes    []mesh     `json:"meshes"`
	Accessors []accessor `json:"accessors"`
}

type scene struct {
	Nodes []int `json:"nodes"`
}

type node struct {
	Mesh     *int  `json:"mesh"`
	Children []int `json:"children"`
}

type mesh struct {
	Primitives []primitive `json:"primitives"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
}

type accessor struct {
	Count int64 `json:"count"`
}

// CountVertices decodes a scene container and sums per-mesh vertex
// contributions across every node reachable from the scene roots.
//
// An indexed primitive contributes the length of its index list (each
// index is one vertex draw, which is the complexity proxy the catalog
// stores); a non-indexed primitive contributes the length of its POSITION
// attribute. A scene with zero meshes yields 0. The function is pure:
// the same buffer always produces the same count.
func CountVertices(data []byte) (int64, error) {
	jsonData, err := extractJSON(data)
	if err != nil {
		return 0, err
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return 0, fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
	}

	for i, acc := range doc.Accessors {
		if acc.Count < 0 {
			return 0, fmt.Errorf("%w: accessor %d has negative count", ErrMalformed, i)
		}
	}

	return countDocument(&doc)
}

// extractJSON returns the scene JSON: the framed chunk for GLB input,
// the buffer itself otherwise.
func extractJSON(data []byte) ([]byte, error) {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == glbMagic {
		return extractGLBChunk(data)
	}
	// Text variant: the whole buffer is the glTF JSON document.
	return data, nil
}

func extractGLBChunk(data []byte) ([]byte, error) {
	if len(data) < glbHeaderSize {
		return nil, fmt.Errorf("%w: truncated GLB header", ErrMalformed)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != glbVersion {
		return nil, fmt.Errorf("%w: unsupported GLB version %d", ErrMalformed, version)
	}

	declaredLength := binary.LittleEndian.Uint32(data[8:12])
	if int(declaredLength) > len(data) {
		return nil, fmt.Errorf("%w: declared length %d exceeds buffer size %d", ErrMalformed, declaredLength, len(data))
	}

	// Walk the chunk list; the JSON chunk is mandatory, the BIN chunk is
	// irrelevant for counting.
	offset := glbHeaderSize
	end := int(declaredLength)
	for offset < end {
		if offset+chunkHeaderSize > end {
			return nil, fmt.Errorf("%w: truncated chunk header at offset %d", ErrMalformed, offset)
		}

		chunkLength := binary.LittleEndian.Uint32(data[offset : offset+4])
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += chunkHeaderSize

		if offset+int(chunkLength) > end {
			return nil, fmt.Errorf("%w: truncated chunk body at offset %d", ErrMalformed, offset)
		}

		switch chunkType {
		case chunkTypeJSON:
			return data[offset : offset+int(chunkLength)], nil
		case chunkTypeBIN:
			// skip
		default:
			return nil, fmt.Errorf("%w: unknown chunk type 0x%08X", ErrMalformed, chunkType)
		}

		offset += int(chunkLength)
	}

	return nil, fmt.Errorf("%w: missing JSON chunk", ErrMalformed)
}

func countDocument(doc *document) (int64, error) {
	roots := sceneRoots(doc)

	visited := make([]bool, len(doc.Nodes))
	stack := append([]int(nil), roots...)

	var total int64
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if idx < 0 || idx >= len(doc.Nodes) {
			return 0, fmt.Errorf("%w: node reference %d out of range", ErrMalformed, idx)
		}
		if visited[idx] {
			continue
		}
		visited[idx] = true

		n := doc.Nodes[idx]
		if n.Mesh != nil {
			count, err := countMesh(doc, *n.Mesh)
			if err != nil {
				return 0, err
			}
			total += count
		}

		stack = append(stack, n.Children...)
	}

	return total, nil
}

// sceneRoots collects the root node indices of every scene. Exporters may
// omit the scenes array entirely; then every node is treated as a root and
// the visited set keeps shared subtrees from double counting.
func sceneRoots(doc *document) []int {
	if len(doc.Scenes) == 0 {
		roots := make([]int, len(doc.Nodes))
		for i := range doc.Nodes {
			roots[i] = i
		}
		return roots
	}

	var roots []int
	for _, s := range doc.Scenes {
		roots = append(roots, s.Nodes...)
	}
	return roots
}

func countMesh(doc *document, meshIdx int) (int64, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return 0, fmt.Errorf("%w: mesh reference %d out of range", ErrMalformed, meshIdx)
	}

	var total int64
	for i, prim := range doc.Meshes[meshIdx].Primitives {
		if prim.Indices != nil {
			count, err := accessorCount(doc, *prim.Indices)
			if err != nil {
				return 0, fmt.Errorf("mesh %d primitive %d indices: %w", meshIdx, i, err)
			}
			total += count
			continue
		}

		posIdx, ok := prim.Attributes[positionAttribute]
		if !ok {
			return 0, fmt.Errorf("%w: mesh %d primitive %d has neither indices nor POSITION", ErrUnsupported, meshIdx, i)
		}
		count, err := accessorCount(doc, posIdx)
		if err != nil {
			return 0, fmt.Errorf("mesh %d primitive %d POSITION: %w", meshIdx, i, err)
		}
		total += count
	}

	return total, nil
}

func accessorCount(doc *document, accIdx int) (int64, error) {
	if accIdx < 0 || accIdx >= len(doc.Accessors) {
		return 0, fmt.Errorf("%w: accessor reference %d out of range", ErrUnsupported, accIdx)
	}
	return doc.Accessors[accIdx].Count, nil
}
