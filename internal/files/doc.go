// Package files groups the file handling sub-packages:
//   - filesystem: filesystem abstraction (OS and in-memory) for testability
//   - loader: reads one .ktr/.kjb file or raw XML text into an element tree
//   - scanner: discovers pipeline files under a directory and summarizes them
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/kettlegraph/internal/files/loader"
//	    "github.com/vvka-141/kettlegraph/internal/files/scanner"
//	)
//
//	doc, err := loader.NewLoader().LoadFile("load_sales.ktr")
//
//	inspector := services.NewInspector(loader.NewLoader(), logger)
//	result, err := scanner.NewScanner(checksum.New(), inspector).ScanDirectory("./etl")
package files
