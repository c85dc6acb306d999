// Package manifest loads YAML batch manifests for `pixbatch run`.
//
// A manifest names the inputs of one batch, the settings patch applied before
// conversion, and optional export overrides:
//
//	inputs:
//	  - photos/
//	  - extra/banner.png
//	settings:
//	  format: webp
//	  quality: 80
//	  width: 1200
//	export:
//	  output_dir: out
//	  individual_threshold: 3
//
// Relative paths resolve against the manifest's directory.
package manifest
