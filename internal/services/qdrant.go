package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// embeddingSize matches text-embedding-004.
const embeddingSize = 768

type TalentIndex interface {
	InitCollection(ctx context.Context) error
	UpsertProfile(ctx context.Context, studentID uuid.UUID, faculty string, chunks []IndexedChunk) error
	DeleteProfile(ctx context.Context, studentID uuid.UUID) error
	Search(ctx context.Context, vector []float32, limit int, faculty string) ([]IndexHit, error)
}

type IndexedChunk struct {
	Text   string
	Vector []float32
}

type IndexHit struct {
	StudentID uuid.UUID
	Score     float32
	Text      string
}

// pointsAPI is the part of *qdrant.Client the index uses.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

type qdrantIndex struct {
	client         pointsAPI
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewTalentIndex(urlStr, apiKey, collectionName string, log *zap.Logger) (TalentIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return newQdrantIndex(client, collectionName, log), nil
}

func newQdrantIndex(client pointsAPI, collectionName string, log *zap.Logger) *qdrantIndex {
	if log == nil {
		log = zap.NewNop()
	}
	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     embeddingSize,
		logger:         log,
	}
}

func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.logger.Info("✅ Qdrant collection already exists", zap.String("collection", q.collectionName))
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

	q.logger.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertProfile replaces every point of the student with the given chunks.
// Point ids are derived from the student id and chunk position.
func (q *qdrantIndex) UpsertProfile(ctx context.Context, studentID uuid.UUID, faculty string, chunks []IndexedChunk) error {
	if err := q.DeleteProfile(ctx, studentID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		pointID := uuid.NewSHA1(studentID, []byte(strconv.Itoa(i)))
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID.String()),
			Vectors: qdrant.NewVectors(chunk.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"student_id":  studentID.String(),
				"faculty":     faculty,
				"chunk_index": int64(i),
				"text":        chunk.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (q *qdrantIndex) DeleteProfile(ctx context.Context, studentID uuid.UUID) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("student_id", studentID.String()),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile points: %w", err)
	}
	return nil
}

func (q *qdrantIndex) Search(ctx context.Context, vector []float32, limit int, faculty string) ([]IndexHit, error) {
	var filter *qdrant.Filter
	if faculty != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("faculty", faculty),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]IndexHit, 0, len(points))
	for _, point := range points {
		id, err := uuid.Parse(payloadString(point.Payload, "student_id"))
		if err != nil {
			q.logger.Warn("skipping point without student id", zap.Error(err))
			continue
		}
		hits = append(hits, IndexHit{
			StudentID: id,
			Score:     point.Score,
			Text:      payloadString(point.Payload, "text"),
		})
	}
	return hits, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}
	if val, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
		return val.StringValue
	}
	return ""
}
