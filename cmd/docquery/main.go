package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/docquery/cli/config"
	"github.com/docquery/cli/internal/chunker"
	"github.com/docquery/cli/internal/db"
	"github.com/docquery/cli/internal/documents"
	"github.com/docquery/cli/internal/domain"
	"github.com/docquery/cli/internal/embeddings"
	"github.com/docquery/cli/internal/eval"
	"github.com/docquery/cli/internal/extract"
	memindex "github.com/docquery/cli/internal/index"
	"github.com/docquery/cli/internal/ollama"
	"github.com/docquery/cli/internal/query"
	"github.com/docquery/cli/internal/rag"
	"github.com/docquery/cli/internal/tui"
)

func main() {
	var (
		ingestFlag = flag.String("ingest", "", "Ingest a document file (pdf or txt)")
		askFlag    = flag.String("ask", "", "Ask a single question and exit")
		docsFlag   = flag.String("docs", "", "Comma-separated document ids to restrict the query to")
		reportFlag = flag.Bool("report", false, "Print the aggregate evaluation report after other actions")
	)
	flag.Parse()

	// Environment overrides are optional; a missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(config.Path()); os.IsNotExist(err) {
		// First run: write the defaults so they can be edited.
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write default config: %v\n", err)
		}
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx := context.Background()

	embedder := newEmbedder(cfg)
	index, closeIndex, err := newIndex(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vector index: %v\n", err)
		os.Exit(1)
	}
	defer closeIndex()

	client := ollama.NewClient(cfg.Ollama.BaseURL)
	orch := rag.NewOrchestrator(rag.Options{
		Chunker:     chunker.New(cfg.Chunking.MaxChunkSize, cfg.Chunking.SentenceWindow),
		Index:       index,
		Embedder:    embedder,
		Processor:   query.NewProcessor(),
		Retriever:   rag.NewRetriever(index, embedder, cfg.Retrieval.TopK, cfg.Retrieval.SimilarityFloor),
		Context:     rag.NewContextBuilder(cfg.Retrieval.ContextBudget),
		Synthesizer: ollama.NewSynthesizer(client, cfg.Ollama.ChatModel),
		Evaluator:   eval.NewEngine(cfg.Evaluation.WindowSize),
		Logger:      log,
	})

	if *ingestFlag != "" {
		processor := documents.NewProcessor(extract.NewRegistry(), orch, log)
		documentID, result, err := processor.ProcessFile(ctx, *ingestFlag)
		if err != nil && result.ChunksStored == 0 {
			fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", *ingestFlag, err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %s as document %s: %d chunks stored", *ingestFlag, documentID, result.ChunksStored)
		if result.ChunksFailed > 0 {
			fmt.Printf(", %d failed: %v", result.ChunksFailed, err)
		}
		fmt.Println()
	}

	if *askFlag != "" {
		var documentIDs []string
		if *docsFlag != "" {
			documentIDs = strings.Split(*docsFlag, ",")
		}
		result, err := orch.Query(ctx, *askFlag, documentIDs, rag.Filters{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error answering query: %v\n", err)
			os.Exit(1)
		}
		printResult(result)
	}

	if *reportFlag {
		printReport(orch.Report())
	}

	if *ingestFlag == "" && *askFlag == "" && !*reportFlag {
		if err := tui.Run(orch); err != nil {
			fmt.Fprintf(os.Stderr, "Error running interface: %v\n", err)
			os.Exit(1)
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newEmbedder(cfg *config.Config) domain.Embedder {
	if cfg.Embeddings.Provider == "ollama" {
		return embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel)
	}
	return embeddings.NewHashEmbedder(cfg.Embeddings.Dimension)
}

func newIndex(ctx context.Context, cfg *config.Config) (domain.VectorIndex, func(), error) {
	if cfg.Index.Backend == "postgres" {
		store, err := db.NewStore(ctx, cfg.Index.ConnectionString, cfg.Embeddings.Dimension)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return memindex.NewMemory(cfg.Embeddings.Dimension), func() {}, nil
}

func printResult(result *rag.QueryResult) {
	fmt.Println(result.Answer.Text)
	fmt.Println()
	for i, source := range result.Sources {
		fmt.Printf("  source %d: doc=%s chunk=%d kind=%s sim=%.3f score=%.3f\n",
			i+1, source.DocumentID, source.ChunkID, source.Kind, source.Similarity, source.RerankScore)
	}
	fmt.Printf("  relevance=%.3f faithfulness=%.3f answer_relevancy=%.3f recall=%.3f precision=%.3f latency=%s\n",
		result.RelevanceScore,
		result.Metrics.Faithfulness,
		result.Metrics.AnswerRelevancy,
		result.Metrics.ContextRecall,
		result.Metrics.ContextPrecision,
		result.Latency,
	)
}

func printReport(report eval.Report) {
	fmt.Printf("queries: total=%d window=%d\n", report.TotalQueries, report.WindowSize)
	fmt.Printf("mean: latency=%s relevance=%.3f success=%.0f%%\n",
		report.MeanLatency, report.MeanRelevance, report.SuccessRate*100)
	fmt.Printf("metrics: faithfulness=%.3f answer_relevancy=%.3f recall=%.3f precision=%.3f\n",
		report.MeanMetrics.Faithfulness,
		report.MeanMetrics.AnswerRelevancy,
		report.MeanMetrics.ContextRecall,
		report.MeanMetrics.ContextPrecision,
	)
	fmt.Printf("latency buckets: <1s=%d 1-3s=%d >=3s=%d\n",
		report.LatencyBuckets.Under1s,
		report.LatencyBuckets.OneTo3s,
		report.LatencyBuckets.Over3s,
	)
}
