// Package mongo stores projects and versions in MongoDB.
//
// Payloads are kept as JSON strings inside each document so that nested
// content maps read back with the same Go types every other store returns.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "pagecraft"

type projectDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type versionDoc struct {
	Key         string    `bson:"_id"`
	ID          string    `bson:"id"`
	ProjectID   string    `bson:"projectId"`
	Version     string    `bson:"version"`
	Tag         string    `bson:"tag"`
	Description string    `bson:"description"`
	Author      string    `bson:"author"`
	CreatedAt   time.Time `bson:"createdAt"`
	IsPublished bool      `bson:"isPublished"`
	Data        string    `bson:"data"`
}

// Store implements ports.ProjectStore and ports.VersionStore.
type Store struct {
	client   *mongo.Client
	projects *mongo.Collection
	versions *mongo.Collection
}

// Connect dials uri and pings the server.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewFromClient(client, database), nil
}

// NewFromClient uses an existing client.
func NewFromClient(client *mongo.Client, database string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	db := client.Database(database)
	return &Store{
		client:   client,
		projects: db.Collection("projects"),
		versions: db.Collection("versions"),
	}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Save upserts the project document.
func (s *Store) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	doc := projectDoc{ID: projectID, Name: data.Name, Data: string(raw), UpdatedAt: time.Now().UTC()}
	_, err = s.projects.ReplaceOne(ctx, bson.M{"_id": projectID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Load reads a project.
func (s *Store) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	var doc projectDoc
	if err := s.projects.FindOne(ctx, bson.M{"_id": projectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	var data domain.ProjectData
	if err := json.Unmarshal([]byte(doc.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return &data, nil
}

// Delete removes a project. Versions are kept.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	if _, err := s.projects.DeleteOne(ctx, bson.M{"_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List returns project ids in id order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.projects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func versionKey(projectID, versionID string) string {
	return projectID + "/" + versionID
}

// ListVersions returns the versions of a project in creation order.
func (s *Store) ListVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "id", Value: 1}})
	cur, err := s.versions.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	var docs []versionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}
	out := make([]domain.Version, 0, len(docs))
	for _, d := range docs {
		v, err := d.version()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateVersion upserts v.
func (s *Store) CreateVersion(ctx context.Context, v domain.Version) error {
	raw, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal version data: %w", err)
	}
	doc := versionDoc{
		Key:         versionKey(v.ProjectID, v.ID),
		ID:          v.ID,
		ProjectID:   v.ProjectID,
		Version:     v.Version,
		Tag:         v.Tag,
		Description: v.Description,
		Author:      v.Author,
		CreatedAt:   v.CreatedAt.UTC(),
		IsPublished: v.IsPublished,
		Data:        string(raw),
	}
	_, err = s.versions.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}
	return nil
}

// LoadVersion returns one version.
func (s *Store) LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	var doc versionDoc
	err := s.versions.FindOne(ctx, bson.M{"_id": versionKey(projectID, versionID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Version{}, domain.ErrVersionNotFound
		}
		return domain.Version{}, fmt.Errorf("failed to load version: %w", err)
	}
	return doc.version()
}

// Publish marks a version as published.
func (s *Store) Publish(ctx context.Context, projectID, versionID string) error {
	res, err := s.versions.UpdateOne(ctx,
		bson.M{"_id": versionKey(projectID, versionID)},
		bson.M{"$set": bson.M{"isPublished": true}})
	if err != nil {
		return fmt.Errorf("failed to publish version: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

// DeleteVersion removes a version.
func (s *Store) DeleteVersion(ctx context.Context, projectID, versionID string) error {
	if _, err := s.versions.DeleteOne(ctx, bson.M{"_id": versionKey(projectID, versionID)}); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	return nil
}

func (d versionDoc) version() (domain.Version, error) {
	v := domain.Version{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Version:     d.Version,
		Tag:         d.Tag,
		Description: d.Description,
		Author:      d.Author,
		CreatedAt:   d.CreatedAt.UTC(),
		IsPublished: d.IsPublished,
	}
	if d.Data != "" && d.Data != "null" {
		v.Data = &domain.ProjectData{}
		if err := json.Unmarshal([]byte(d.Data), v.Data); err != nil {
			return domain.Version{}, fmt.Errorf("failed to unmarshal version data: %w", err)
		}
	}
	return v, nil
}
