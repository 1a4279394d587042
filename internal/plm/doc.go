// Package plm is the boundary to the remote product-lifecycle repository
// and the home of the resolution and discovery stages of the pipeline.
//
// # Session boundary
//
// The package never talks a wire protocol itself. It consumes two already
// authenticated handles supplied by the caller:
//
//   - Repository: combined item+revision+related retrieval, attribute-based
//     item lookup, named-relation traversal, dataset materialization, and
//     property-policy installation
//   - FileStore: local file-cache lookup, read-ticket issuance, and ticketed
//     file streaming
//
// Session bundles one Repository/FileStore pair and tracks which property
// policy has been applied so reapplying is a no-op.
//
// # Resolution
//
// Resolver maps an item identifier to the item, its latest revision, and any
// opportunistically returned datasets using a two-tier strategy: a single
// combined call first, falling back to an attribute lookup plus a direct
// relation fetch when the combined response reports that the related-object
// traversal was not honored or carries no revision. A missing item is the
// sentinel ErrNotFound, not a failure.
//
// # Discovery
//
// Discoverer enumerates datasets of wanted types attached to a revision,
// walking the described-by-document relation to related document revisions
// when the revision itself carries nothing of interest. Traversal is bounded
// by a depth cap and a visited-uid set; the remote object graph is not
// guaranteed acyclic.
package plm
