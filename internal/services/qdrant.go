package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantService interface {
	InitCollection() error
	UpsertCandidate(ctx context.Context, candidateID uuid.UUID, name string, embedding []float32) error
	SearchCandidates(ctx context.Context, queryEmbedding []float32, limit int) ([]CandidateHit, error)
	DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error
}

// CandidateHit is one similarity-search result. Distance is the dissimilarity
// (lower = closer); for a cosine collection it is 1 - similarity score.
type CandidateHit struct {
	CandidateID uuid.UUID
	Name        string
	Distance    float64
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC client speaks to 6334 unless the URL says otherwise.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertCandidate implements QdrantService. One point per candidate, keyed by
// the candidate's UUID so re-ingestion overwrites instead of duplicating.
func (q *qdrantService) UpsertCandidate(ctx context.Context, candidateID uuid.UUID, name string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(candidateID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"candidate_id": candidateID.String(),
			"name":         name,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// SearchCandidates implements QdrantService. Results arrive best-first from
// qdrant and are returned in that order.
func (q *qdrantService) SearchCandidates(ctx context.Context, queryEmbedding []float32, limit int) ([]CandidateHit, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []CandidateHit
	for _, point := range searchResult {
		hit := CandidateHit{
			// Cosine similarity in [-1, 1] becomes a non-negative distance.
			Distance: float64(1 - point.Score),
		}
		if hit.Distance < 0 {
			hit.Distance = 0
		}

		payload := point.Payload
		if rawID, ok := payload["candidate_id"]; ok {
			if val, ok := rawID.GetKind().(*qdrant.Value_StringValue); ok {
				id, err := uuid.Parse(val.StringValue)
				if err != nil {
					continue
				}
				hit.CandidateID = id
			}
		}
		if name, ok := payload["name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Name = val.StringValue
			}
		}

		if hit.CandidateID != uuid.Nil {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// DeleteCandidate implements QdrantService.
func (q *qdrantService) DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("candidate_id", candidateID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate vector: %w", err)
	}
	return nil
}
