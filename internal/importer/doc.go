// Package importer bulk-loads projects from a YAML or JSON seed file.
//
// A seed file lists projects under a top-level "projects" key:
//
//	projects:
//	  - title: Medicaid fraud detection
//	    description: Claims anomaly scoring
//	    tags: [Python, SQL]
//	    categories:
//	      client: [AHCA]
//	    extra_tags: "claims, anomaly"
//
// Records are committed in batches, one transaction per batch, with batches
// running concurrently. Projects from different batches may therefore be
// assigned IDs out of file order. Only one import runs at a time per
// Importer.
package importer
