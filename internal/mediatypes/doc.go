// Package mediatypes classifies workspace files by extension.
//
// It has no dependencies beyond the standard library so both the workspace
// listing and the encode pipeline can import it without cycles.
//
//	ext := strings.ToLower(filepath.Ext(name))
//	if mediatypes.IsMediaFile(ext) {
//	    // list it
//	}
package mediatypes
