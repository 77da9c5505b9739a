// Package render writes pipeline models, graphs, paths and scan results as
// styled text, JSON or YAML.
package render
