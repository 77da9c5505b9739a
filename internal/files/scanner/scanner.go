package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/kettlegraph/internal/checksum"
	"github.com/vvka-141/kettlegraph/internal/files/filesystem"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Scanner discovers and summarizes pipeline files.
// It is safe for concurrent use as long as its dependencies are.
type Scanner struct {
	calculator checksum.Calculator
	parser     kettle.Parser
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a scanner over the OS filesystem.
// Panics if calculator or parser is nil.
func NewScanner(calculator checksum.Calculator, parser kettle.Parser) *Scanner {
	return NewScannerWithFS(calculator, parser, filesystem.NewOSFileSystem())
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// The parser should read through the same provider.
// Panics if any argument is nil.
func NewScannerWithFS(calculator checksum.Calculator, parser kettle.Parser, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if parser == nil {
		panic("parser cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		parser:     parser,
		fsProvider: fsProvider,
	}
}

// ScanDirectory walks root and summarizes every .ktr and .kjb file in
// lexical path order. Only a failure to walk the tree is returned as an error.
func (s *Scanner) ScanDirectory(root string) (kettle.ScanResult, error) {
	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return kettle.ScanResult{}, fmt.Errorf("failed to open directory: %w", err)
	}

	result := kettle.ScanResult{Root: dir.Path()}
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if file.Info().IsDir() {
			return nil
		}
		if !kettle.IsPipelineExtension(filepath.Ext(file.Info().Name())) {
			return nil
		}
		result.Files = append(result.Files, s.summarize(file))
		return nil
	})
	if err != nil {
		return kettle.ScanResult{}, err
	}
	return result, nil
}

func (s *Scanner) summarize(file filesystem.File) kettle.FileSummary {
	summary := kettle.FileSummary{Path: displayPath(file.RelativePath())}

	content, err := file.ReadContent()
	if err != nil {
		summary.Err = fmt.Errorf("failed to read file: %w", err)
		return summary
	}
	summary.Checksum = s.calculator.CalculateNormalized(content)

	p, err := s.parser.ParseFile(file.Path())
	if err != nil {
		summary.Err = err
		return summary
	}

	summary.Kind = p.Kind
	summary.Name = p.Name
	summary.Steps = p.StepCount()
	summary.Hops = len(p.Hops)
	summary.EnabledHops = len(p.EnabledHops())
	summary.Connections = len(p.Connections)
	return summary
}

// displayPath renders a relative path Unix-style with a ./ prefix.
func displayPath(rel string) string {
	p := filepath.ToSlash(rel)
	if !strings.HasPrefix(p, "./") {
		p = "./" + p
	}
	return p
}

var _ kettle.FileScanner = (*Scanner)(nil)
