// Package codec translates projects to and from the renderer's document
// format.
//
// Encode and Decode are lossless inverses. NormalizeForExport and Export are
// deliberately lossy: they drop nulls and empty lists and shorten font paths
// for documents meant to be read or shared. ParseDocument is the import
// entry point and accepts JSON or YAML, bare or inside a {config: ...}
// envelope.
package codec
