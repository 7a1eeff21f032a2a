package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"canvasassist/config"
	"canvasassist/services/canvas"
	"canvasassist/services/docindex"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

// courseDocument is one indexable piece of course material: an announcement
// or an assignment description, already reduced to plain text.
type courseDocument struct {
	ID         string
	CourseID   int
	CourseName string
	Title      string
	Content    string
}

type documentChunk struct {
	ID              string
	Document        courseDocument
	ChunkIndex      int
	Heading         string
	HeadingPath     []string
	Content         string
	EnrichedContext string
}

type enrichChunkContextParams struct {
	EnrichedSummary string `json:"enriched_summary"`
}

var enrichmentTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "enrich_chunk_context",
			Description: "Provide an enriched contextual summary for a course material chunk",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"enriched_summary": map[string]any{
						"type":        "string",
						"description": "A self-contained summary explaining what this chunk covers, which course and document it belongs to, and why a student would care about it.",
					},
				},
				"required": []string{"enriched_summary"},
			},
		},
	},
}

func main() {
	log.Printf("[INFO] Starting course content indexing")

	cfg := config.Load()

	if cfg.CanvasAccessToken == "" {
		log.Fatal("[ERROR] CANVAS_ACCESS_TOKEN environment variable is required")
	}
	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	canvasService := canvas.NewService(cfg.CanvasAPIURL, cfg.CanvasAccessToken, cfg.CanvasInstituteURL, cfg.Verbose)

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create OpenAI client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create embedder: %v", err)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to create Pinecone client: %v", err)
	}

	if err := ensurePineconeIndex(pc, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	documents, err := collectCourseDocuments(ctx, canvasService)
	if err != nil {
		log.Fatalf("[ERROR] Failed to collect course documents: %v", err)
	}

	log.Printf("[INFO] Collected %d documents from Canvas", len(documents))

	for i, doc := range documents {
		log.Printf("[INFO] Processing document %d/%d (%s)", i+1, len(documents), doc.ID)

		if err := processDocument(pc, cfg.PineconeIndexName, doc, llm, embedder); err != nil {
			log.Printf("[ERROR] Failed to process document %s: %v", doc.ID, err)
			continue
		}

		log.Printf("[INFO] Successfully processed document %s", doc.ID)
	}

	log.Printf("[INFO] Course content indexing completed")
}

// collectCourseDocuments pulls announcements and assignment descriptions for
// every enrolled course. Per-course failures are skipped; a course the proxy
// cannot serve should not abort the whole run.
func collectCourseDocuments(ctx context.Context, canvasService *canvas.Service) ([]courseDocument, error) {
	courses, err := canvasService.GetCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	var documents []courseDocument
	for _, course := range courses {
		announcements, err := canvasService.GetAnnouncements(ctx, course.ID)
		if err != nil {
			log.Printf("[WARN] Skipping announcements for course %d: %v", course.ID, err)
		} else {
			for _, ann := range announcements {
				content := stripHTML(ann.Message)
				if content == "" {
					continue
				}
				documents = append(documents, courseDocument{
					ID:         fmt.Sprintf("course_%d_announcement_%d", course.ID, ann.ID),
					CourseID:   course.ID,
					CourseName: course.Name,
					Title:      ann.Title,
					Content:    content,
				})
			}
		}

		assignments, err := canvasService.GetAssignments(ctx, course.ID)
		if err != nil {
			log.Printf("[WARN] Skipping assignments for course %d: %v", course.ID, err)
			continue
		}
		for _, a := range assignments {
			content := stripHTML(a.Description)
			if content == "" {
				continue
			}
			documents = append(documents, courseDocument{
				ID:         fmt.Sprintf("course_%d_assignment_%d", course.ID, a.ID),
				CourseID:   course.ID,
				CourseName: course.Name,
				Title:      a.Name,
				Content:    content,
			})
		}
	}

	return documents, nil
}

var (
	tagRegex    = regexp.MustCompile(`<[^>]+>`)
	blankRegex  = regexp.MustCompile(`\n{3,}`)
	headerRegex = regexp.MustCompile(`(?i)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
)

// stripHTML turns Canvas rich-text HTML into plain text, converting header
// tags into markdown headings so chunking can follow the document structure.
func stripHTML(html string) string {
	text := headerRegex.ReplaceAllStringFunc(html, func(match string) string {
		parts := headerRegex.FindStringSubmatch(match)
		level := int(parts[1][0] - '0')
		return "\n" + strings.Repeat("#", level) + " " + tagRegex.ReplaceAllString(parts[2], "") + "\n"
	})
	text = strings.ReplaceAll(text, "</p>", "\n")
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = tagRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = blankRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func ensurePineconeIndex(pc *pinecone.Client, indexName string) error {
	ctx := context.Background()

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"environment": "development", "project": "canvasassist-indexing"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			break
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}

	return nil
}

func processDocument(pc *pinecone.Client, indexName string, doc courseDocument, llm llms.Model, embedder embeddings.Embedder) error {
	chunks := chunkByHeadings(doc)
	if len(chunks) == 0 {
		log.Printf("[INFO] No chunks created for document %s", doc.ID)
		return nil
	}
	log.Printf("[INFO] Created %d chunks for document %s", len(chunks), doc.ID)

	if err := deleteExistingVectors(pc, indexName, doc.ID); err != nil {
		return fmt.Errorf("failed to delete existing vectors: %w", err)
	}

	for i := range chunks {
		log.Printf("[INFO] Processing chunk %d/%d for document %s", i+1, len(chunks), doc.ID)

		enrichedContext, err := enrichChunkContext(llm, chunks[i])
		if err != nil {
			log.Printf("[ERROR] Failed to enrich chunk %d of document %s: %v", i+1, doc.ID, err)
			chunks[i].EnrichedContext = chunks[i].Content
		} else {
			chunks[i].EnrichedContext = enrichedContext
		}

		vector, err := createVector(chunks[i], embedder)
		if err != nil {
			return fmt.Errorf("failed to create vector for chunk %d: %w", i+1, err)
		}

		if err := upsertVector(pc, indexName, vector); err != nil {
			return fmt.Errorf("failed to upsert chunk %d: %w", i+1, err)
		}
	}

	return nil
}

var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func chunkByHeadings(doc courseDocument) []documentChunk {
	lines := strings.Split(doc.Content, "\n")

	var chunks []documentChunk
	var currentChunk strings.Builder
	var currentHeading string
	var headingStack []string
	chunkIndex := 0

	flush := func() {
		content := strings.TrimSpace(currentChunk.String())
		if content == "" {
			return
		}
		chunk := documentChunk{
			ID:          fmt.Sprintf("%s_chunk_%d", doc.ID, chunkIndex),
			Document:    doc,
			ChunkIndex:  chunkIndex,
			Heading:     currentHeading,
			HeadingPath: make([]string, len(headingStack)),
			Content:     content,
		}
		copy(chunk.HeadingPath, headingStack)
		chunks = append(chunks, chunk)
		chunkIndex++
		currentChunk.Reset()
	}

	for _, line := range lines {
		if match := headingRegex.FindStringSubmatch(line); match != nil {
			flush()

			headingLevel := len(match[1])
			currentHeading = match[2]

			if headingLevel <= len(headingStack) {
				headingStack = headingStack[:headingLevel-1]
			}
			headingStack = append(headingStack, currentHeading)
		}
		currentChunk.WriteString(line + "\n")
	}
	flush()

	// Documents with no headings become a single chunk titled after the
	// document itself.
	if len(chunks) == 1 && chunks[0].Heading == "" {
		chunks[0].Heading = doc.Title
	}

	return chunks
}

func enrichChunkContext(llm llms.Model, chunk documentChunk) (string, error) {
	ctx := context.Background()

	systemPrompt := `You are an expert at analyzing course materials and providing enriched contextual summaries.

Your task is to create a comprehensive summary that:
1. Explains what this specific chunk covers
2. Names the course and document it comes from
3. Highlights why a student would find this information relevant
4. Makes the chunk self-contained and searchable`

	headingPathStr := ""
	if len(chunk.HeadingPath) > 0 {
		headingPathStr = fmt.Sprintf("Section hierarchy: %s", strings.Join(chunk.HeadingPath, " → "))
	}

	userPrompt := fmt.Sprintf(`Please analyze this course material chunk and create an enriched contextual summary.

COURSE: %s
DOCUMENT: %s

CHUNK TO ANALYZE:
Heading: %s
%s
Content: %s

FULL DOCUMENT CONTEXT:
%s`,
		chunk.Document.CourseName, chunk.Document.Title, chunk.Heading, headingPathStr, chunk.Content, chunk.Document.Content)

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(enrichmentTools),
		llms.WithTemperature(0.3),
		llms.WithToolChoice("required"))
	if err != nil {
		return "", fmt.Errorf("failed to generate enrichment: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return "", fmt.Errorf("no tool calls in enrichment response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "enrich_chunk_context" {
		return "", fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params enrichChunkContextParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return "", fmt.Errorf("failed to parse enrichment arguments: %w", err)
	}

	return params.EnrichedSummary, nil
}

func indexConnection(pc *pinecone.Client, indexName string) (*pinecone.IndexConnection, error) {
	ctx := context.Background()

	idxDesc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: docindex.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}

func deleteExistingVectors(pc *pinecone.Client, indexName, documentID string) error {
	ctx := context.Background()

	idxConn, err := indexConnection(pc, indexName)
	if err != nil {
		return err
	}

	prefix := documentID + "_"
	limit := uint32(100)

	listResp, err := idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
		Prefix: &prefix,
		Limit:  &limit,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Namespace not found") {
			return nil
		}
		return fmt.Errorf("failed to list vectors: %w", err)
	}

	for {
		vectorIDs := make([]string, 0, len(listResp.VectorIds))
		for _, id := range listResp.VectorIds {
			if id != nil {
				vectorIDs = append(vectorIDs, *id)
			}
		}

		if len(vectorIDs) > 0 {
			if err := idxConn.DeleteVectorsById(ctx, vectorIDs); err != nil {
				return fmt.Errorf("failed to delete vector batch: %w", err)
			}
			log.Printf("[INFO] Deleted %d stale vectors for document %s", len(vectorIDs), documentID)
		}

		if listResp.NextPaginationToken == nil {
			break
		}
		listResp, err = idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
			Prefix:          &prefix,
			Limit:           &limit,
			PaginationToken: listResp.NextPaginationToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list next batch of vectors: %w", err)
		}
	}

	return nil
}

func createVector(chunk documentChunk, embedder embeddings.Embedder) (*pinecone.Vector, error) {
	ctx := context.Background()

	combinedText := fmt.Sprintf("Heading: %s\n\nContent: %s\n\nContext: %s",
		chunk.Heading, chunk.Content, chunk.EnrichedContext)

	vectors, err := embedder.EmbedDocuments(ctx, []string{combinedText})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	metadata := map[string]any{
		"course_id":        chunk.Document.CourseID,
		"course_name":      chunk.Document.CourseName,
		"document_id":      chunk.Document.ID,
		"document_title":   chunk.Document.Title,
		"chunk_index":      chunk.ChunkIndex,
		"heading":          chunk.Heading,
		"heading_path":     strings.Join(chunk.HeadingPath, " → "),
		"content":          chunk.Content,
		"enriched_context": chunk.EnrichedContext,
		"created_at":       time.Now().Format(time.RFC3339),
	}

	metadataStruct, err := structpb.NewStruct(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata struct for chunk %s: %w", chunk.ID, err)
	}

	return &pinecone.Vector{
		Id:       chunk.ID,
		Values:   &vectors[0],
		Metadata: metadataStruct,
	}, nil
}

func upsertVector(pc *pinecone.Client, indexName string, vector *pinecone.Vector) error {
	ctx := context.Background()

	idxConn, err := indexConnection(pc, indexName)
	if err != nil {
		return err
	}

	if _, err := idxConn.UpsertVectors(ctx, []*pinecone.Vector{vector}); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}
