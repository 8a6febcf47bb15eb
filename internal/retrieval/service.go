// Package retrieval augments advisor prompts with relevant project
// document context from a ChromaDB instance, embedding queries through
// Ollama. The whole feature is optional: when disabled or unreachable the
// chat degrades to plain conversation.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	v2 "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/ollama"

	"github.com/forgelabs/forge-tui/internal/configuration"
	"github.com/forgelabs/forge-tui/internal/logging"
)

// RetrievedDocument is one scored context hit.
type RetrievedDocument struct {
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Collection string            `json:"collection"`
	Distance   float32           `json:"distance"`
	ID         string            `json:"id"`
}

// Result contains the retrieved documents for one query.
type Result struct {
	Documents []RetrievedDocument `json:"documents"`
	Query     string              `json:"query"`
}

// Service queries ChromaDB collections for document context.
type Service struct {
	config              *configuration.Config
	client              v2.Client
	embeddingFunc       embeddings.EmbeddingFunction
	connected           bool
	selectedCollections []string
}

// NewService creates an unconnected retrieval service.
func NewService(config *configuration.Config) *Service {
	return &Service{config: config}
}

// Initialize connects to ChromaDB, builds the Ollama embedding function,
// and verifies both actually work before marking the service ready.
func (s *Service) Initialize(ctx context.Context) error {
	logger := logging.WithComponent("retrieval")

	if s.config.ChromaDBURL == "" {
		return fmt.Errorf("ChromaDB URL not configured")
	}

	client, err := v2.NewHTTPClient(v2.WithBaseURL(s.config.ChromaDBURL))
	if err != nil {
		return fmt.Errorf("failed to create ChromaDB client: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	collections, err := client.ListCollections(connCtx)
	if err != nil {
		logger.Error("Failed to connect to ChromaDB",
			"chromadb_url", s.config.ChromaDBURL,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to connect to ChromaDB: %w", err)
	}

	embeddingFunc, err := ollama.NewOllamaEmbeddingFunction(
		ollama.WithBaseURL(s.config.OllamaURL),
		ollama.WithModel(embeddings.EmbeddingModel(s.config.EmbeddingModel)),
	)
	if err != nil {
		return fmt.Errorf("failed to create Ollama embedding function: %w", err)
	}

	// Some chat models do not embed; catch that here instead of on the
	// first real query.
	testCtx, testCancel := context.WithTimeout(ctx, 10*time.Second)
	defer testCancel()
	if _, err := embeddingFunc.EmbedDocuments(testCtx, []string{"test"}); err != nil {
		return fmt.Errorf("embedding model %q does not support embeddings (try nomic-embed-text:latest): %w",
			s.config.EmbeddingModel, err)
	}

	s.client = client
	s.embeddingFunc = embeddingFunc
	s.connected = true

	s.applyCollectionSelection(collections)

	logger.Info("Retrieval service ready",
		"chromadb_url", s.config.ChromaDBURL,
		"collections", len(s.selectedCollections),
	)
	return nil
}

// applyCollectionSelection resolves the configured collection set against
// what the server offers; an empty configuration selects everything.
func (s *Service) applyCollectionSelection(available []v2.Collection) {
	selected := s.config.SelectedCollections

	s.selectedCollections = s.selectedCollections[:0]
	for _, collection := range available {
		name := collection.Name()
		if len(selected) == 0 || selected[name] {
			s.selectedCollections = append(s.selectedCollections, name)
		}
	}
}

// UpdateConfig swaps the configuration reference, typically after the
// settings tab saves.
func (s *Service) UpdateConfig(newConfig *configuration.Config) {
	s.config = newConfig
}

// IsReady reports whether queries can be served.
func (s *Service) IsReady() bool {
	return s.config.RetrievalEnabled && s.connected && len(s.selectedCollections) > 0
}

// QueryDocuments retrieves the most relevant documents for a query across
// the selected collections, sorted by distance and capped at the
// configured maximum.
func (s *Service) QueryDocuments(ctx context.Context, query string) (*Result, error) {
	logger := logging.WithComponent("retrieval")

	if !s.connected {
		return nil, fmt.Errorf("retrieval service not connected to ChromaDB")
	}
	if !s.config.RetrievalEnabled {
		return nil, fmt.Errorf("retrieval is disabled in configuration")
	}
	if len(s.selectedCollections) == 0 {
		return nil, fmt.Errorf("no collections selected for retrieval")
	}

	result := &Result{Query: query, Documents: make([]RetrievedDocument, 0)}

	for _, collectionName := range s.selectedCollections {
		docs, err := s.queryCollection(ctx, collectionName, query)
		if err != nil {
			// One bad collection must not sink the query.
			logger.Warn("Failed to query collection",
				"collection_name", collectionName,
				"error", err.Error(),
			)
			continue
		}
		result.Documents = append(result.Documents, docs...)
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Distance < result.Documents[j].Distance
	})
	if len(result.Documents) > s.config.MaxDocuments {
		result.Documents = result.Documents[:s.config.MaxDocuments]
	}

	logger.Debug("Retrieval query completed",
		"documents", len(result.Documents),
		"collections", len(s.selectedCollections),
	)
	return result, nil
}

// queryCollection runs the vector query against one collection and
// filters hits by the configured distance threshold.
func (s *Service) queryCollection(ctx context.Context, collectionName, query string) ([]RetrievedDocument, error) {
	collection, err := s.client.GetCollection(ctx, collectionName, v2.WithEmbeddingFunctionGet(s.embeddingFunc))
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", collectionName, err)
	}

	queryResult, err := collection.Query(
		ctx,
		v2.WithQueryTexts(query),
		v2.WithNResults(s.config.MaxDocuments),
		v2.WithIncludeQuery("documents", "metadatas", "distances"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collectionName, err)
	}

	documents := make([]RetrievedDocument, 0)
	for groupIdx, group := range queryResult.GetDocumentsGroups() {
		for i, doc := range group {
			var distance float32 = 1.0
			if distanceGroups := queryResult.GetDistancesGroups(); len(distanceGroups) > groupIdx && len(distanceGroups[groupIdx]) > i {
				distance = float32(distanceGroups[groupIdx][i])
			}
			if distance > float32(s.config.ChromaDBDistance) {
				continue
			}

			metadata := make(map[string]string)
			if metadataGroups := queryResult.GetMetadatasGroups(); len(metadataGroups) > groupIdx && len(metadataGroups[groupIdx]) > i {
				if impl, ok := metadataGroups[groupIdx][i].(*v2.DocumentMetadataImpl); ok && impl != nil {
					for _, key := range impl.Keys() {
						if value, ok := impl.GetRaw(key); ok && value != nil {
							metadata[key] = fmt.Sprintf("%v", value)
						}
					}
				}
			}

			var docID string
			if idGroups := queryResult.GetIDGroups(); len(idGroups) > groupIdx && len(idGroups[groupIdx]) > i {
				docID = string(idGroups[groupIdx][i])
			}

			documents = append(documents, RetrievedDocument{
				Content:    doc.ContentString(),
				Metadata:   metadata,
				Collection: collectionName,
				Distance:   distance,
				ID:         docID,
			})
		}
	}

	return documents, nil
}

// FormatDocumentsForPrompt renders retrieved documents as a prompt
// preamble for the advisor call.
func (r *Result) FormatDocumentsForPrompt() string {
	if len(r.Documents) == 0 {
		return ""
	}

	var prompt string
	prompt += "=== PROJECT CONTEXT ===\n"
	prompt += fmt.Sprintf("The following %d document(s) were retrieved as background for this question:\n\n", len(r.Documents))
	for i, doc := range r.Documents {
		prompt += fmt.Sprintf("Document %d (Collection: %s, Relevance: %.3f):\n", i+1, doc.Collection, 1.0-doc.Distance)
		prompt += doc.Content + "\n\n"
	}
	prompt += "=== END CONTEXT ===\n\n"

	return prompt
}
