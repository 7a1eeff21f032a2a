package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"canvasassist/config"
	"canvasassist/db"
	"canvasassist/services"
	"canvasassist/services/agent"
	"canvasassist/services/canvas"
	"canvasassist/services/docindex"
	"canvasassist/services/llm"
)

const welcomeBanner = `
=====================================
  CanvasAssist - your Canvas helper
=====================================
Ask about your courses, assignments, deadlines, and grades.
Commands: 'help' for help, 'reset' to clear the conversation, 'exit' or 'quit' to leave.
`

const helpText = `Things you can ask:
  - What courses am I taking?
  - What's due this week?
  - Do I have any late assignments?
  - Tell me about the "Consensus Protocols" assignment in CSC 495
  - What's my grade in Operating Systems?

Commands:
  reset  - clear the conversation history
  help   - show this message
  exit   - leave (quit works too)`

func main() {
	debug := flag.Bool("debug", false, "log LLM requests and tool calls")
	flag.Parse()

	cfg := config.Load()
	verbose := cfg.Verbose || *debug

	if missing := missingEnv(cfg); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Missing required environment variables: %s\n", strings.Join(missing, ", "))
		fmt.Fprintln(os.Stderr, "Set them in your environment or a .env file and try again.")
		os.Exit(1)
	}

	if !verbose {
		// Keep the terminal conversational; service-layer logs only show
		// up under --debug.
		log.SetOutput(io.Discard)
	}

	generator, err := llm.NewGenerator(cfg.LLMProvider, cfg.LLMAPIKey(), cfg.LLMModel, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize LLM provider: %v\n", err)
		os.Exit(1)
	}

	canvasService := canvas.NewService(cfg.CanvasAPIURL, cfg.CanvasAccessToken, cfg.CanvasInstituteURL, verbose)

	var memoryService *services.MemoryService
	if cfg.DatabaseURL != "" {
		memoryRepo, err := db.NewPostgresMemoryRepository(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to memory database: %v\n", err)
			os.Exit(1)
		}
		defer memoryRepo.Close()
		memoryService = services.NewMemoryService(memoryRepo)
	}

	var docindexService *docindex.Service
	if cfg.PineconeAPIKey != "" {
		docindexService, err = docindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize document index: %v\n", err)
			os.Exit(1)
		}
	}

	agentService := agent.NewService(generator, canvasService, memoryService, docindexService, verbose)
	conv := agent.NewConversation(cfg.MaxContextLength)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Print(welcomeBanner, "\n")
	runREPL(ctx, agentService, conv)
	fmt.Println("\nGoodbye! Good luck with your assignments.")
}

func runREPL(ctx context.Context, agentService *agent.Service, conv *agent.Conversation) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			return
		case "reset":
			conv.Reset()
			fmt.Println("Conversation history cleared.")
			continue
		case "help":
			fmt.Println(helpText)
			continue
		}

		reply := agentService.ProcessMessage(ctx, conv, input)
		fmt.Printf("\nCanvasAssist: %s\n\n", reply)
	}
}

// missingEnv lists the variables the assistant cannot start without. The
// database and Pinecone are optional; Canvas and the LLM key are not.
func missingEnv(cfg *config.Config) []string {
	var missing []string
	if cfg.LLMAPIKey() == "" {
		if cfg.LLMProvider == "anthropic" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		} else {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	if cfg.CanvasAccessToken == "" {
		missing = append(missing, "CANVAS_ACCESS_TOKEN")
	}
	return missing
}
