package docindex

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const Namespace = "canvas-content"

// Service queries the course-content vector index built by cmd/indexdocs.
type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(apiKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing document index service")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	service := &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}

	log.Printf("[INFO] Document index service initialized with index %s", indexName)
	return service, nil
}

// QueryTopicChunks retrieves up to limit content chunks relevant to the given
// topics. Per-topic failures are logged and skipped so one bad topic does not
// sink the whole query.
func (s *Service) QueryTopicChunks(ctx context.Context, topics []string, limit int) ([]string, error) {
	log.Printf("[INFO] Starting index query for topics: %v with limit: %d", topics, limit)

	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	var allChunks []string

	for _, topic := range topics {
		log.Printf("[INFO] Querying topic: %s", topic)

		queryEmbeddings, err := s.embedder.EmbedDocuments(ctx, []string{topic})
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for topic '%s': %v", topic, err)
			continue
		}

		result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          queryEmbeddings[0],
			TopK:            20,
			IncludeValues:   false,
			IncludeMetadata: true,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to query vectors for topic '%s': %v", topic, err)
			continue
		}

		log.Printf("[INFO] Retrieved %d chunks for topic '%s'", len(result.Matches), topic)

		for _, match := range result.Matches {
			if match.Vector.Metadata == nil {
				continue
			}
			if chunk := formatChunk(match.Vector.Metadata.AsMap()); chunk != "" {
				allChunks = append(allChunks, chunk)
			}
		}
	}

	if len(allChunks) == 0 {
		log.Printf("[WARN] No chunks found for topics: %v", topics)
		return []string{}, nil
	}

	shuffleStrings(allChunks)

	if len(allChunks) > limit {
		allChunks = allChunks[:limit]
	}

	log.Printf("[INFO] Returning %d chunks", len(allChunks))
	return allChunks, nil
}

// formatChunk flattens vector metadata back into a readable block for the
// model: course and section context first, then the content and the enriched
// summary written at indexing time.
func formatChunk(metadata map[string]any) string {
	var parts []string

	if courseName, ok := metadata["course_name"].(string); ok && courseName != "" {
		parts = append(parts, "Course: "+courseName)
	}

	if heading, ok := metadata["heading"].(string); ok && heading != "" {
		headingInfo := "Section: " + heading
		if headingPath, ok := metadata["heading_path"].(string); ok && headingPath != "" {
			headingInfo += " (Path: " + headingPath + ")"
		}
		parts = append(parts, headingInfo)
	}

	if content, ok := metadata["content"].(string); ok && content != "" {
		parts = append(parts, "Content: "+content)
	}

	if enrichedContext, ok := metadata["enriched_context"].(string); ok && enrichedContext != "" {
		parts = append(parts, "Context: "+enrichedContext)
	}

	if len(parts) == 0 {
		return ""
	}

	combined := parts[0]
	for i := 1; i < len(parts); i++ {
		combined = fmt.Sprintf("%s\n--------------\n%s", combined, parts[i])
	}
	return combined
}

func shuffleStrings(slice []string) {
	for i := range slice {
		j := rand.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}
