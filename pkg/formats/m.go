// Package formats provides codecs for lite3d engine file formats.
// M (mesh container) format encoder and decoder.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MSignature is the magic number at the start of every .m file.
const MSignature uint32 = 0xBEEB0001

// MIndexElementSize is the byte size of one index element. Indices are always uint32.
const MIndexElementSize = 4

// M format errors.
var (
	ErrInvalidMSignature = errors.New("invalid M signature: expected 0xBEEB0001")
	ErrTruncatedMData    = errors.New("truncated M data")
	ErrInvalidMSection   = errors.New("invalid M section size")
)

// Binding identifies the shader attribute slot of a vertex layout entry.
type Binding uint8

// Binding slots understood by the engine. Slot 4 is reserved.
const (
	BindingVertex     Binding = 0
	BindingColor      Binding = 1
	BindingNormal     Binding = 2
	BindingTexCoord   Binding = 3
	BindingTangent    Binding = 5
	BindingBinormal   Binding = 6
	BindingBoneIndex  Binding = 7
	BindingBoneWeight Binding = 8
)

// String returns a human-readable binding name.
func (b Binding) String() string {
	switch b {
	case BindingVertex:
		return "Vertex"
	case BindingColor:
		return "Color"
	case BindingNormal:
		return "Normal"
	case BindingTexCoord:
		return "TexCoord"
	case BindingTangent:
		return "Tangent"
	case BindingBinormal:
		return "Binormal"
	case BindingBoneIndex:
		return "BoneIndex"
	case BindingBoneWeight:
		return "BoneWeight"
	default:
		return fmt.Sprintf("Unknown(%d)", b)
	}
}

// MVersion is the format version triple.
type MVersion struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// DefaultMVersion is the version written by the exporter unless configured otherwise.
var DefaultMVersion = MVersion{Major: 1, Minor: 0, Patch: 1}

// Packed returns the version as major<<16 | minor<<8 | patch.
func (v MVersion) Packed() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8 | uint32(v.Patch)
}

// String returns the version as "Major.Minor.Patch".
func (v MVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// UnpackMVersion splits a packed version integer.
func UnpackMVersion(packed uint32) MVersion {
	return MVersion{
		Major: uint8(packed >> 16),
		Minor: uint8(packed >> 8),
		Patch: uint8(packed),
	}
}

// MHeader is the fixed file header.
type MHeader struct {
	Signature         uint32
	Version           uint32
	ChunkSectionSize  int32 // Total bytes of all chunk records
	VertexSectionSize int32
	IndexSectionSize  int32
	ChunkCount        int32
}

// MLayout is one (binding, component count) pair of a chunk vertex layout.
type MLayout struct {
	Binding Binding
	Count   uint8
}

// MChunkHeader describes one chunk's slice of the vertex and index sections.
type MChunkHeader struct {
	HeaderSize       int32 // Bytes of the full chunk record: fields + bounds + layout
	LayoutCount      int32
	IndexCount       int32
	IndexSize        int32
	IndexOffset      int32 // Relative to the start of the index section
	VertexCount      int32
	VertexSize       int32
	VertexOffset     int32 // Relative to the start of the vertex section
	IndexElementSize uint8
	MaterialIndex    uint32
}

// MBoundingVolume is the chunk bounding box corners plus bounding sphere.
type MBoundingVolume struct {
	Box          [8][3]float32
	SphereCenter [3]float32
	SphereRadius float32
}

// MChunk is a decoded chunk record.
type MChunk struct {
	Header MChunkHeader
	Bounds MBoundingVolume
	Layout []MLayout
}

// Stride returns the vertex record size described by the layout.
func (c *MChunk) Stride() int {
	stride := 0
	for _, l := range c.Layout {
		stride += int(l.Count) * 4
	}
	return stride
}

// M is a decoded .m file.
type M struct {
	Header   MHeader
	Chunks   []MChunk
	Vertices []byte
	Indices  []byte
}

// Version returns the unpacked header version.
func (m *M) Version() MVersion {
	return UnpackMVersion(m.Header.Version)
}

var (
	mHeaderSize      = binary.Size(MHeader{})
	mChunkHeaderSize = binary.Size(MChunkHeader{})
	mBoundsSize      = binary.Size(MBoundingVolume{})
	mLayoutSize      = binary.Size(MLayout{})
)

// MChunkRecordSize returns the on-disk size of a chunk record with the given layout count.
func MChunkRecordSize(layoutCount int) int {
	return mChunkHeaderSize + mBoundsSize + layoutCount*mLayoutSize
}

// WriteMHeader writes the file header.
func WriteMHeader(w io.Writer, h MHeader) error {
	return binary.Write(w, binary.NativeEndian, &h)
}

// WriteMChunk writes one chunk record: header fields, bounding volume, then layout pairs.
func WriteMChunk(w io.Writer, c *MChunk) error {
	if err := binary.Write(w, binary.NativeEndian, &c.Header); err != nil {
		return fmt.Errorf("writing chunk header: %w", err)
	}
	if err := binary.Write(w, binary.NativeEndian, &c.Bounds); err != nil {
		return fmt.Errorf("writing chunk bounds: %w", err)
	}
	if err := binary.Write(w, binary.NativeEndian, c.Layout); err != nil {
		return fmt.Errorf("writing chunk layout: %w", err)
	}
	return nil
}

// ParseM parses .m data from a byte slice.
func ParseM(data []byte) (*M, error) {
	if len(data) < mHeaderSize {
		return nil, ErrTruncatedMData
	}

	r := bytes.NewReader(data)
	m := &M{}

	if err := binary.Read(r, binary.NativeEndian, &m.Header); err != nil {
		return nil, ErrTruncatedMData
	}
	if m.Header.Signature != MSignature {
		return nil, ErrInvalidMSignature
	}
	if m.Header.ChunkCount < 0 || m.Header.ChunkSectionSize < 0 ||
		m.Header.VertexSectionSize < 0 || m.Header.IndexSectionSize < 0 {
		return nil, ErrInvalidMSection
	}

	if int(m.Header.ChunkCount) > r.Len()/MChunkRecordSize(0) {
		return nil, fmt.Errorf("%w: %d chunks do not fit in %d bytes", ErrTruncatedMData, m.Header.ChunkCount, r.Len())
	}

	m.Chunks = make([]MChunk, 0, m.Header.ChunkCount)
	var chunkBytes int
	for i := int32(0); i < m.Header.ChunkCount; i++ {
		var c MChunk
		if err := binary.Read(r, binary.NativeEndian, &c.Header); err != nil {
			return nil, fmt.Errorf("%w: chunk %d header", ErrTruncatedMData, i)
		}
		if err := binary.Read(r, binary.NativeEndian, &c.Bounds); err != nil {
			return nil, fmt.Errorf("%w: chunk %d bounds", ErrTruncatedMData, i)
		}
		if c.Header.LayoutCount < 0 || int(c.Header.LayoutCount)*mLayoutSize > r.Len() {
			return nil, fmt.Errorf("%w: chunk %d layout", ErrTruncatedMData, i)
		}
		c.Layout = make([]MLayout, c.Header.LayoutCount)
		if err := binary.Read(r, binary.NativeEndian, c.Layout); err != nil {
			return nil, fmt.Errorf("%w: chunk %d layout", ErrTruncatedMData, i)
		}
		chunkBytes += MChunkRecordSize(len(c.Layout))
		m.Chunks = append(m.Chunks, c)
	}

	if chunkBytes != int(m.Header.ChunkSectionSize) {
		return nil, fmt.Errorf("%w: chunk section is %d bytes, header says %d",
			ErrInvalidMSection, chunkBytes, m.Header.ChunkSectionSize)
	}
	for i := range m.Chunks {
		if err := m.checkChunk(i); err != nil {
			return nil, err
		}
	}

	if int(m.Header.VertexSectionSize) > r.Len() {
		return nil, fmt.Errorf("%w: vertex section", ErrTruncatedMData)
	}
	m.Vertices = make([]byte, m.Header.VertexSectionSize)
	if _, err := io.ReadFull(r, m.Vertices); err != nil {
		return nil, fmt.Errorf("%w: vertex section", ErrTruncatedMData)
	}

	if int(m.Header.IndexSectionSize) > r.Len() {
		return nil, fmt.Errorf("%w: index section", ErrTruncatedMData)
	}
	m.Indices = make([]byte, m.Header.IndexSectionSize)
	if _, err := io.ReadFull(r, m.Indices); err != nil {
		return nil, fmt.Errorf("%w: index section", ErrTruncatedMData)
	}

	return m, nil
}

// checkChunk verifies that chunk i's record size and its vertex and index
// ranges agree with the file header.
func (m *M) checkChunk(i int) error {
	c := &m.Chunks[i]
	h := c.Header
	if int(h.HeaderSize) != MChunkRecordSize(len(c.Layout)) {
		return fmt.Errorf("%w: chunk %d record is %d bytes, header says %d",
			ErrInvalidMSection, i, MChunkRecordSize(len(c.Layout)), h.HeaderSize)
	}
	if !inSection(h.VertexOffset, h.VertexSize, m.Header.VertexSectionSize) {
		return fmt.Errorf("%w: chunk %d vertices [%d+%d] outside section of %d bytes",
			ErrInvalidMSection, i, h.VertexOffset, h.VertexSize, m.Header.VertexSectionSize)
	}
	if !inSection(h.IndexOffset, h.IndexSize, m.Header.IndexSectionSize) {
		return fmt.Errorf("%w: chunk %d indices [%d+%d] outside section of %d bytes",
			ErrInvalidMSection, i, h.IndexOffset, h.IndexSize, m.Header.IndexSectionSize)
	}
	if h.IndexCount < 0 || int64(h.IndexCount)*MIndexElementSize > int64(h.IndexSize) {
		return fmt.Errorf("%w: chunk %d has %d indices in %d bytes",
			ErrInvalidMSection, i, h.IndexCount, h.IndexSize)
	}
	return nil
}

func inSection(offset, size, section int32) bool {
	return offset >= 0 && size >= 0 && int64(offset)+int64(size) <= int64(section)
}

// IndicesOf returns the decoded index array of chunk i, or nil if i is out of
// range or the chunk's index range does not fit the index section.
func (m *M) IndicesOf(i int) []uint32 {
	if i < 0 || i >= len(m.Chunks) {
		return nil
	}
	h := m.Chunks[i].Header
	if !inSection(h.IndexOffset, h.IndexSize, int32(len(m.Indices))) ||
		h.IndexCount < 0 || int64(h.IndexCount)*MIndexElementSize > int64(h.IndexSize) {
		return nil
	}
	out := make([]uint32, h.IndexCount)
	section := m.Indices[h.IndexOffset : h.IndexOffset+h.IndexSize]
	for j := range out {
		out[j] = binary.NativeEndian.Uint32(section[j*MIndexElementSize:])
	}
	return out
}
