// Package catalog publishes extracted pipeline models to a PostgreSQL
// lineage catalog.
//
// The catalog is an outer surface: parsing and path enumeration never touch
// it. Publish writes one document per transaction and replaces any earlier
// rows for the same deterministic pipeline ID, so republishing a changed file
// leaves exactly one current copy.
//
// Tables (all in the configured schema):
//
//	documents    one row per pipeline, keyed by Pipeline.ID()
//	steps        registry order, keyed by (document_id, name)
//	hops         document order, with enabled and error-route flags
//	connections  declared connection descriptors
package catalog
