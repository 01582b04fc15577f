package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// makeM encodes a file with one chunk per layout entry of vertexCounts/indexCounts.
func makeM(t *testing.T, vertexCounts, indexCounts []int) []byte {
	t.Helper()
	layout := []MLayout{{BindingVertex, 3}, {BindingNormal, 3}, {BindingTexCoord, 2}}
	stride := 8 * 4

	var chunks []MChunk
	var vertices, indices bytes.Buffer
	sectionSize := 0
	for i, vc := range vertexCounts {
		ic := indexCounts[i]
		c := MChunk{
			Header: MChunkHeader{
				HeaderSize:       int32(MChunkRecordSize(len(layout))),
				LayoutCount:      int32(len(layout)),
				IndexCount:       int32(ic),
				IndexSize:        int32(ic * MIndexElementSize),
				IndexOffset:      int32(indices.Len()),
				VertexCount:      int32(vc),
				VertexSize:       int32(vc * stride),
				VertexOffset:     int32(vertices.Len()),
				IndexElementSize: MIndexElementSize,
				MaterialIndex:    uint32(i),
			},
			Layout: layout,
		}
		c.Bounds.SphereRadius = float32(i + 1)
		vertices.Write(make([]byte, vc*stride))
		for j := 0; j < ic; j++ {
			_ = binary.Write(&indices, binary.NativeEndian, uint32(j))
		}
		sectionSize += int(c.Header.HeaderSize)
		chunks = append(chunks, c)
	}

	var buf bytes.Buffer
	h := MHeader{
		Signature:         MSignature,
		Version:           DefaultMVersion.Packed(),
		ChunkSectionSize:  int32(sectionSize),
		VertexSectionSize: int32(vertices.Len()),
		IndexSectionSize:  int32(indices.Len()),
		ChunkCount:        int32(len(chunks)),
	}
	if err := WriteMHeader(&buf, h); err != nil {
		t.Fatalf("WriteMHeader: %v", err)
	}
	for i := range chunks {
		if err := WriteMChunk(&buf, &chunks[i]); err != nil {
			t.Fatalf("WriteMChunk: %v", err)
		}
	}
	buf.Write(vertices.Bytes())
	buf.Write(indices.Bytes())
	return buf.Bytes()
}

func TestMChunkRecordSize(t *testing.T) {
	tests := []struct {
		layouts int
		want    int
	}{
		{3, 3*2 + 37 + 112},
		{5, 5*2 + 37 + 112},
		{8, 8*2 + 37 + 112},
	}
	for _, tt := range tests {
		if got := MChunkRecordSize(tt.layouts); got != tt.want {
			t.Errorf("MChunkRecordSize(%d): expected %d, got %d", tt.layouts, tt.want, got)
		}
	}
}

func TestParseM_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		verts   []int
		indices []int
	}{
		{"one chunk", []int{3}, []int{3}},
		{"three chunks", []int{3, 4, 10}, []int{3, 6, 12}},
		{"no indices", []int{6, 3}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseM(makeM(t, tt.verts, tt.indices))
			if err != nil {
				t.Fatalf("ParseM: %v", err)
			}
			if len(m.Chunks) != len(tt.verts) {
				t.Fatalf("expected %d chunks, got %d", len(tt.verts), len(m.Chunks))
			}
			if m.Version() != DefaultMVersion {
				t.Errorf("expected version %s, got %s", DefaultMVersion, m.Version())
			}
			for i, c := range m.Chunks {
				if int(c.Header.VertexCount) != tt.verts[i] {
					t.Errorf("chunk %d: expected %d vertices, got %d", i, tt.verts[i], c.Header.VertexCount)
				}
				if c.Stride() != 32 {
					t.Errorf("chunk %d: expected stride 32, got %d", i, c.Stride())
				}
				if c.Header.MaterialIndex != uint32(i) {
					t.Errorf("chunk %d: expected material %d, got %d", i, i, c.Header.MaterialIndex)
				}
				if c.Bounds.SphereRadius != float32(i+1) {
					t.Errorf("chunk %d: expected radius %d, got %f", i, i+1, c.Bounds.SphereRadius)
				}
				idx := m.IndicesOf(i)
				if len(idx) != tt.indices[i] {
					t.Fatalf("chunk %d: expected %d indices, got %d", i, tt.indices[i], len(idx))
				}
				for j, v := range idx {
					if v != uint32(j) {
						t.Errorf("chunk %d index %d: expected %d, got %d", i, j, j, v)
					}
				}
			}
		})
	}
}

func TestParseM_Errors(t *testing.T) {
	valid := makeM(t, []int{3}, []int{3})

	badSig := append([]byte(nil), valid...)
	binary.NativeEndian.PutUint32(badSig, 0xDEADBEEF)

	badSection := append([]byte(nil), valid...)
	binary.NativeEndian.PutUint32(badSection[8:], 7)

	// patch returns a copy of valid with the int32 at off replaced.
	patch := func(off int, v int32) []byte {
		d := append([]byte(nil), valid...)
		binary.NativeEndian.PutUint32(d[off:], uint32(v))
		return d
	}
	chunk := mHeaderSize
	const (
		headerSizeField   = 0
		indexCountField   = 8
		indexOffsetField  = 16
		vertexSizeField   = 24
		vertexOffsetField = 28
	)

	var huge bytes.Buffer
	if err := WriteMHeader(&huge, MHeader{
		Signature:  MSignature,
		Version:    DefaultMVersion.Packed(),
		ChunkCount: 0x7fffffff,
	}); err != nil {
		t.Fatalf("WriteMHeader: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedMData},
		{"short header", valid[:10], ErrTruncatedMData},
		{"bad signature", badSig, ErrInvalidMSignature},
		{"chunk section mismatch", badSection, ErrInvalidMSection},
		{"truncated chunk", valid[:mHeaderSize+20], ErrTruncatedMData},
		{"truncated index section", valid[:len(valid)-1], ErrTruncatedMData},
		{"chunk count beyond data", huge.Bytes(), ErrTruncatedMData},
		{"vertex section beyond data", patch(12, 0x7fffffff), ErrTruncatedMData},
		{"index section beyond data", patch(16, 0x7ffffff0), ErrTruncatedMData},
		{"record size mismatch", patch(chunk+headerSizeField, 10), ErrInvalidMSection},
		{"vertex range outside section", patch(chunk+vertexOffsetField, 1000), ErrInvalidMSection},
		{"vertex size outside section", patch(chunk+vertexSizeField, 1<<20), ErrInvalidMSection},
		{"index range outside section", patch(chunk+indexOffsetField, 8), ErrInvalidMSection},
		{"index count beyond index size", patch(chunk+indexCountField, 100), ErrInvalidMSection},
		{"negative vertex offset", patch(chunk+vertexOffsetField, -4), ErrInvalidMSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseM(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIndicesOfOutOfRange(t *testing.T) {
	m, err := ParseM(makeM(t, []int{3}, []int{3}))
	if err != nil {
		t.Fatalf("ParseM: %v", err)
	}
	if got := m.IndicesOf(1); got != nil {
		t.Errorf("expected nil for missing chunk, got %v", got)
	}
	if got := m.IndicesOf(-1); got != nil {
		t.Errorf("expected nil for negative chunk, got %v", got)
	}

	m.Chunks[0].Header.IndexOffset = 8
	if got := m.IndicesOf(0); got != nil {
		t.Errorf("expected nil for index range outside section, got %v", got)
	}
}

func TestMVersion(t *testing.T) {
	v := MVersion{Major: 1, Minor: 2, Patch: 3}
	if v.Packed() != 0x010203 {
		t.Errorf("expected packed 0x010203, got %#x", v.Packed())
	}
	if UnpackMVersion(v.Packed()) != v {
		t.Errorf("expected %s after unpack, got %s", v, UnpackMVersion(v.Packed()))
	}
	if v.String() != "1.2.3" {
		t.Errorf("expected 1.2.3, got %s", v.String())
	}
}

func TestBindingString(t *testing.T) {
	if BindingBoneWeight.String() != "BoneWeight" {
		t.Errorf("expected BoneWeight, got %s", BindingBoneWeight)
	}
	if Binding(4).String() != "Unknown(4)" {
		t.Errorf("expected Unknown(4), got %s", Binding(4))
	}
}
