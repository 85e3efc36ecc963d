package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finlens/backend/internal/auth"
	"github.com/finlens/backend/internal/extraction"
	"github.com/finlens/backend/internal/service"
	"github.com/finlens/backend/internal/store"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8111"
	}

	ctx := context.Background()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Determine if we're running locally
	useMemoryStore := os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local"

	var storeImpl store.Store
	if useMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal("GOOGLE_CLOUD_PROJECT must be set when not using the memory store")
		}

		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		storeImpl = store.NewFirestoreStore(firestoreClient)
	}

	pipeline := extraction.NewPipeline(extraction.Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		AITimeout:     envDuration("AI_TIMEOUT"),
		OCRTimeout:    envDuration("OCR_TIMEOUT"),
		OCRLanguages:  envList("OCR_LANGUAGES"),
		DateOrder:     extraction.DateOrder(os.Getenv("DATE_ORDER")),
	}, storeImpl)
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("OPENAI_API_KEY not set - document parsing uses heuristics only")
	}

	issuer := auth.NewTokenIssuer([]byte(jwtSecret))
	revocations := auth.NewRevocationList()

	svc := service.New(storeImpl, pipeline, issuer, revocations)
	mux := svc.Routes()

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})
	handler := c.Handler(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Printf("Starting server on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func corsOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		return envListFrom(raw)
	}
	return []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
}

func envDuration(key string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

func envList(key string) []string {
	return envListFrom(os.Getenv(key))
}

func envListFrom(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
