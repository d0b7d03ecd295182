package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"science-chat/internal/config"
	"science-chat/internal/db"
	"science-chat/internal/llm"
	"science-chat/internal/repository"
	"science-chat/internal/service"
)

func main() {
	userFlag := flag.String("user", "", "user id (por defecto se genera uno)")
	memory := flag.Bool("memory", false, "guardar el historial en memoria en lugar de Postgres")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load()

	load := config.LoadConfig
	if *memory {
		load = config.LoadConfigWithoutDatabase
	}
	cfg, err := load()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var users repository.UserRepository
	if *memory {
		users = repository.NewMemoryUserRepository()
	} else {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			log.Fatal(err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal(err)
		}
		users = repository.NewPgUserRepository(pool)
	}

	llmClient, err := llm.New(llm.Options{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout(),
		Generation: llm.GenerationConfig{
			Temperature:     cfg.LLMTemperature,
			TopK:            cfg.LLMTopK,
			TopP:            cfg.LLMTopP,
			MaxOutputTokens: cfg.LLMMaxTokens,
		},
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	userID := strings.TrimSpace(*userFlag)
	if userID == "" {
		userID = "id-" + uuid.NewString()
	}

	chatSvc := service.NewChatService(logger, users, llmClient, nil, service.DefaultPreamble())
	if err := run(ctx, chatSvc, userID, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, chatSvc *service.ChatService, userID string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "Chat como %s. Comandos: /my id, /delete data <id>, /history, exit\n", userID)

	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		prompt := strings.TrimSpace(line)

		switch {
		case prompt == "exit" || prompt == "quit":
			return nil
		case prompt == "/history":
			printHistory(ctx, chatSvc, userID, out)
		case prompt != "":
			reply, chatErr := chatSvc.HandlePrompt(ctx, prompt, userID)
			if chatErr != nil {
				fmt.Fprintf(out, "error: %v\n", chatErr)
			} else {
				fmt.Fprintf(out, "%s\n", reply)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func printHistory(ctx context.Context, chatSvc *service.ChatService, userID string, out io.Writer) {
	turns, err := chatSvc.History(ctx, userID)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if len(turns) == 0 {
		fmt.Fprintln(out, "(sin historial)")
		return
	}
	for _, t := range turns {
		fmt.Fprintf(out, "[%s] %s\n", t.Role, t.Message)
	}
}
