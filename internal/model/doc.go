// Package model defines the domain types shared across the drawing-downloader.
//
// The types fall into two groups:
//
// Remote objects — transient references to objects owned by the remote
// product-lifecycle repository:
//
//   - Item: a versioned engineering part record
//   - Revision: one specific version of an Item or document
//   - Dataset: a typed container holding one or more named files
//   - Object: an untyped related-object reference returned by relation traversal
//   - FileRef: a named file inside a Dataset
//
// Local results — values produced by a download run:
//
//   - DownloadResult: the outcome of staging one file locally
//   - ItemReport: the aggregated result for one item identifier
//   - RunReport: the ordered results of a whole batch run
//
// Remote objects are never persisted; they are held only for the duration of
// one identifier's pipeline and discarded afterward.
package model
