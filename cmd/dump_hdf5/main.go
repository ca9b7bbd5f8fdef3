// Package main provides a command-line utility for inspecting HDF5 file
// structure using the hdf5 library itself, rather than a raw hex dump.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/h5kit/hdf5"
	"github.com/h5kit/hdf5/internal/core"
)

func main() {
	walk := flag.Bool("walk", true, "Walk and print the object tree")
	attrs := flag.Bool("attrs", false, "Print group/dataset attributes while walking")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: dump_hdf5 [flags] <file.h5>")
		flag.PrintDefaults()
		return
	}

	filename := args[0]
	file, err := hdf5.Open(filename)
	if err != nil {
		log.Fatalf("failed to open %s: %v", filename, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close %s: %v", filename, err)
		}
	}()

	sb := file.Superblock()
	fmt.Printf("%s\n", filename)
	fmt.Printf("  superblock version: %d\n", sb.Version)
	fmt.Printf("  offset size:        %d bytes\n", sb.OffsetSize)
	fmt.Printf("  length size:        %d bytes\n", sb.LengthSize)
	fmt.Printf("  root group address: 0x%X\n", sb.RootGroup)

	if !*walk {
		return
	}

	fmt.Println("\nobjects:")
	file.Walk(func(path string, obj hdf5.Object) {
		switch v := obj.(type) {
		case *hdf5.Group:
			fmt.Printf("  group     %s (%d children)\n", path, len(v.Children()))
			if *attrs {
				printAttributes(path, v.Attributes())
			}
		case *hdf5.Dataset:
			fmt.Printf("  dataset   %s (addr: 0x%X)\n", path, v.Address())
			if *attrs {
				printAttributes(path, v.Attributes())
			}
		}
	})
}

func printAttributes(path string, attributes []*core.Attribute, err error) {
	if err != nil {
		fmt.Printf("    %s: failed to read attributes: %v\n", path, err)
		return
	}
	for _, attr := range attributes {
		fmt.Printf("    %s.%s (%d bytes)\n", path, attr.Name, len(attr.Data))
	}
}
