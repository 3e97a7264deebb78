package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// ReportPoint is the slice of a report that gets indexed for retrieval.
type ReportPoint struct {
	ReportID       string
	GoalID         uint
	CreatedAt      time.Time
	CompletionRate float64
	Content        string
}

// ReportHit is a retrieved historical report.
type ReportHit struct {
	ReportID       string
	CreatedAt      time.Time
	CompletionRate float64
	Content        string
	Score          float64
}

// Index stores report embeddings in Qdrant for per-goal similarity search.
type Index struct {
	Client         *qdrant.Client
	CollectionName string
	dim            int
}

// NewIndex connects to Qdrant and ensures the report collection exists.
func NewIndex(qdrantURL string, collectionName string, apiKey string, dim int) (*Index, error) {
	// Strip http:// or https:// prefix and any port
	qdrantURL = strings.TrimPrefix(qdrantURL, "http://")
	qdrantURL = strings.TrimPrefix(qdrantURL, "https://")

	host := qdrantURL
	if idx := strings.Index(qdrantURL, ":"); idx != -1 {
		host = qdrantURL[:idx]
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   6334, // gRPC port
		APIKey: apiKey,
		UseTLS: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	if dim == 0 {
		dim = DefaultDimension
	}

	i := &Index{
		Client:         client,
		CollectionName: collectionName,
		dim:            dim,
	}

	if err := i.ensureCollection(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return i, nil
}

func (i *Index) ensureCollection(ctx context.Context) error {
	exists, err := i.Client.CollectionExists(ctx, i.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = i.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Payload indexes for per-goal filtering and recency
	indexes := []struct {
		field string
		typ   qdrant.FieldType
	}{
		{"goal_id", qdrant.FieldType_FieldTypeInteger},
		{"created_at", qdrant.FieldType_FieldTypeInteger},
		{"completion_rate", qdrant.FieldType_FieldTypeFloat},
	}
	for _, idx := range indexes {
		fieldType := idx.typ
		_, err = i.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: i.CollectionName,
			FieldName:      idx.field,
			FieldType:      &fieldType,
			Wait:           boolPtr(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for %s: %w", idx.field, err)
		}
	}

	return nil
}

// StoreReport upserts a report's embedding with its retrieval payload.
func (i *Index) StoreReport(ctx context.Context, point ReportPoint, vec Vector) error {
	if len(vec) != i.dim {
		return &EmbeddingError{Reason: fmt.Sprintf("vector has %d dimensions, index requires %d", len(vec), i.dim)}
	}

	payload := map[string]*qdrant.Value{
		"report_id":       qdrant.NewValueString(point.ReportID),
		"goal_id":         qdrant.NewValueInt(int64(point.GoalID)),
		"created_at":      qdrant.NewValueInt(point.CreatedAt.Unix()),
		"completion_rate": qdrant.NewValueDouble(point.CompletionRate),
		"content":         qdrant.NewValueString(point.Content),
	}

	qp := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(point.ReportID),
		Vectors: qdrant.NewVectors(vec...),
		Payload: payload,
	}

	_, err := i.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.CollectionName,
		Points:         []*qdrant.PointStruct{qp},
	})
	return err
}

// SearchSimilar returns up to limit reports for the goal ranked by cosine
// similarity to the query vector, drawn from a candidate pool. Retrieval is
// always scoped to a single goal.
func (i *Index) SearchSimilar(ctx context.Context, goalID uint, vec Vector, pool int, limit int) ([]ReportHit, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("goal_id", int64(goalID)),
		},
	}

	searchResult, err := i.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.CollectionName,
		Query:          qdrant.NewQuery(vec...),
		Filter:         filter,
		Limit:          uint64Ptr(uint64(pool)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]ReportHit, 0, len(searchResult))
	for _, point := range searchResult {
		if len(hits) >= limit {
			break
		}
		payload := point.Payload
		hits = append(hits, ReportHit{
			ReportID:       getStringFromPayload(payload, "report_id"),
			CreatedAt:      time.Unix(getIntFromPayload(payload, "created_at"), 0),
			CompletionRate: getFloatFromPayload(payload, "completion_rate"),
			Content:        getStringFromPayload(payload, "content"),
			Score:          float64(point.Score),
		})
	}

	return hits, nil
}

// Helper functions for payload extraction
func getStringFromPayload(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok {
		return val.GetStringValue()
	}
	return ""
}

func getIntFromPayload(payload map[string]*qdrant.Value, key string) int64 {
	if val, ok := payload[key]; ok {
		return val.GetIntegerValue()
	}
	return 0
}

func getFloatFromPayload(payload map[string]*qdrant.Value, key string) float64 {
	if val, ok := payload[key]; ok {
		return val.GetDoubleValue()
	}
	return 0.0
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
