package model

import (
	"strings"
	"time"
)

// Item is a transient reference to a part record in the remote repository.
//
// The remote repository owns the object; the downloader only ever holds a
// reference for the duration of one identifier's processing.
type Item struct {
	// UID is the repository-wide unique id of the object.
	UID string

	// ItemID is the business identifier (part number) of the item.
	// Unlike UID it is shared by all revisions of the item.
	ItemID string

	// Name is the display name of the item (object_name).
	Name string
}

// Revision is one specific version of an Item or of a related document.
//
// Which revision is "latest" is decided by the remote service; the
// downloader never orders revisions itself.
type Revision struct {
	// UID is the repository-wide unique id of the revision object.
	UID string

	// RevisionID is the revision identifier, e.g. "A" or "02".
	RevisionID string

	// Name is the display name of the revision.
	Name string

	// Created is the creation timestamp reported by the server.
	Created time.Time
}

// Object is an untyped reference returned by named-relation traversal.
//
// Relation walks can surface datasets, document revisions, or anything else
// the server relates to the source object; Type tells them apart.
type Object struct {
	UID  string
	Type string
	Name string
}

// IsRevision reports whether the object looks like a revision-typed object.
//
// Remote type names are site-specific subtypes ("DocumentRevision",
// "CAEModelRevision", ...), so the check is a suffix match, matching how the
// source repository names revision subclasses.
func (o Object) IsRevision() bool {
	return strings.HasSuffix(strings.ToLower(o.Type), "revision")
}

// Dataset is a typed container of named files attached to a revision.
type Dataset struct {
	UID  string
	Name string
	Type string

	// Files are the named file references the dataset carries.
	Files []FileRef
}

// FileRef identifies one named file inside a Dataset.
type FileRef struct {
	// UID is the unique id of the file object in the remote file store.
	UID string

	// Name is the original file name, e.g. "12345.pdf".
	Name string
}
