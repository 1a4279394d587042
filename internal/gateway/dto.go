package gateway

import (
	"time"

	"github.com/handiism/drawing-downloader/internal/model"
)

// Wire types for the gateway's JSON API. Kept separate from the domain
// model so the wire format can evolve without touching the pipeline.

type combinedRequest struct {
	ItemID       string `json:"item_id"`
	RevisionRule string `json:"revision_rule,omitempty"`
}

type combinedResponse struct {
	Item             *itemDTO     `json:"item"`
	Revision         *revisionDTO `json:"revision"`
	Datasets         []datasetDTO `json:"datasets"`
	RelatedTraversed bool         `json:"related_traversed"`
}

type itemResponse struct {
	Item     *itemDTO     `json:"item"`
	Revision *revisionDTO `json:"revision"`
}

type relatedResponse struct {
	Objects []objectDTO `json:"objects"`
}

type datasetsRequest struct {
	UIDs []string `json:"uids"`
}

type datasetsResponse struct {
	Datasets []datasetDTO `json:"datasets"`
}

type cacheResponse struct {
	Cached bool   `json:"cached"`
	Path   string `json:"path"`
}

type ticketResponse struct {
	Ticket string `json:"ticket"`
}

type itemDTO struct {
	UID    string `json:"uid"`
	ItemID string `json:"item_id"`
	Name   string `json:"object_name"`
}

func (d *itemDTO) toModel() *model.Item {
	return &model.Item{UID: d.UID, ItemID: d.ItemID, Name: d.Name}
}

type revisionDTO struct {
	UID        string    `json:"uid"`
	RevisionID string    `json:"item_revision_id"`
	Name       string    `json:"object_name"`
	Created    time.Time `json:"creation_date"`
}

func (d *revisionDTO) toModel() *model.Revision {
	return &model.Revision{
		UID:        d.UID,
		RevisionID: d.RevisionID,
		Name:       d.Name,
		Created:    d.Created,
	}
}

type objectDTO struct {
	UID  string `json:"uid"`
	Type string `json:"object_type"`
	Name string `json:"object_name"`
}

type datasetDTO struct {
	UID   string    `json:"uid"`
	Name  string    `json:"object_name"`
	Type  string    `json:"object_type"`
	Files []fileDTO `json:"files"`
}

func (d datasetDTO) toModel() model.Dataset {
	ds := model.Dataset{UID: d.UID, Name: d.Name, Type: d.Type}
	for _, f := range d.Files {
		ds.Files = append(ds.Files, model.FileRef{UID: f.UID, Name: f.Name})
	}
	return ds
}

type fileDTO struct {
	UID  string `json:"uid"`
	Name string `json:"original_file_name"`
}
