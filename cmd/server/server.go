package main

import (
	"fmt"
	"log"
	"net/http"

	"canvasassist/config"
	"canvasassist/db"
	"canvasassist/handlers"
	"canvasassist/services"
	"canvasassist/services/agent"
	"canvasassist/services/canvas"
	"canvasassist/services/docindex"
	"canvasassist/services/llm"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.LLMAPIKey() == "" {
		log.Fatalf("API key for LLM provider %q is required (set OPENAI_API_KEY or ANTHROPIC_API_KEY)", cfg.LLMProvider)
	}

	if cfg.CanvasAccessToken == "" {
		log.Fatal("CANVAS_ACCESS_TOKEN environment variable is required")
	}

	generator, err := llm.NewGenerator(cfg.LLMProvider, cfg.LLMAPIKey(), cfg.LLMModel, cfg.Verbose)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	canvasService := canvas.NewService(cfg.CanvasAPIURL, cfg.CanvasAccessToken, cfg.CanvasInstituteURL, cfg.Verbose)

	// Memory and conversation persistence are optional; without a database
	// the server still answers, it just forgets.
	var memoryService *services.MemoryService
	var conversationService *services.ConversationService
	if cfg.DatabaseURL != "" {
		memoryRepo, err := db.NewPostgresMemoryRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize memory database: %v", err)
		}
		defer memoryRepo.Close()
		memoryService = services.NewMemoryService(memoryRepo)

		conversationRepo, err := db.NewPostgresConversationRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize conversation database: %v", err)
		}
		defer conversationRepo.Close()
		conversationService = services.NewConversationService(conversationRepo)
	} else {
		log.Printf("[WARN] DB_URL not set, running without memory or session persistence")
	}

	var docindexService *docindex.Service
	if cfg.PineconeAPIKey != "" {
		docindexService, err = docindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize document index service: %v", err)
		}
	} else {
		log.Printf("[WARN] PINECONE_API_KEY not set, course content search disabled")
	}

	agentService := agent.NewService(generator, canvasService, memoryService, docindexService, cfg.Verbose)
	agentHandler := handlers.NewAgentHandler(agentService, conversationService, cfg.MaxContextLength)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	agentHandler.RegisterRoutes(router)
	if conversationService != nil {
		conversationHandler := handlers.NewConversationHandler(conversationService)
		conversationHandler.RegisterRoutes(router)
	}

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
