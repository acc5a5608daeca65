package domain

import "time"

// Version is an immutable snapshot of a project.
type Version struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	Version     string       `json:"version"`
	Tag         string       `json:"tag,omitempty"`
	Description string       `json:"description,omitempty"`
	Author      string       `json:"author,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	IsPublished bool         `json:"isPublished"`
	Data        *ProjectData `json:"data,omitempty"`
}

// Clone deep-copies the version, including its data.
func (v Version) Clone() Version {
	out := v
	out.Data = v.Data.Clone()
	return out
}
