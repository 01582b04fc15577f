package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/lite3d-exporter/pkg/formats"
)

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lite3dexport info <file.m>")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := formats.ParseM(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:     %s\n", args[0])
	fmt.Printf("Version:  %s\n", m.Version())
	fmt.Printf("Chunks:   %d\n", m.Header.ChunkCount)
	fmt.Printf("Vertices: %d bytes\n", m.Header.VertexSectionSize)
	fmt.Printf("Indices:  %d bytes\n", m.Header.IndexSectionSize)
	fmt.Println()

	for i, c := range m.Chunks {
		h := c.Header
		fmt.Printf("Chunk %d (material %d)\n", i, h.MaterialIndex)
		fmt.Printf("  vertices %d x %d bytes at %d\n", h.VertexCount, c.Stride(), h.VertexOffset)
		fmt.Printf("  indices  %d at %d\n", h.IndexCount, h.IndexOffset)
		fmt.Printf("  layout  ")
		for _, l := range c.Layout {
			fmt.Printf(" %s:%d", l.Binding, l.Count)
		}
		fmt.Println()
		fmt.Printf("  sphere   center %v radius %.4f\n", c.Bounds.SphereCenter, c.Bounds.SphereRadius)
	}
}
