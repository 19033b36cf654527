package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"emberly_server/realtime"
	"emberly_server/routes"
	"emberly_server/services"
	"emberly_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// newChangeSource wires the live conversation feed. With stream ARNs
// configured it tails DynamoDB Streams; otherwise it falls back to polling.
func newChangeSource(matchService *services.MatchService) realtime.ChangeSource {
	var arns []string
	for _, env := range []string{"MATCHES_STREAM_ARN", "MESSAGES_STREAM_ARN"} {
		if arn := os.Getenv(env); arn != "" {
			arns = append(arns, arn)
		}
	}

	interval := 5 * time.Second
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			interval = parsed
		} else {
			log.Printf("⚠️ Warning: invalid POLL_INTERVAL %q, using default", v)
		}
	}

	if len(arns) > 0 {
		log.Printf("Using DynamoDB Streams change source (%d streams)", len(arns))
		return &realtime.StreamSource{
			Streams:      services.InitializeStreamsClient(),
			Matches:      matchService,
			StreamARNs:   arns,
			PollInterval: interval,
		}
	}

	log.Printf("No stream ARNs configured, using polling change source (interval %s)", interval)
	return &realtime.PollSource{Matches: matchService, Interval: interval}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService}
	matchService := &services.MatchService{Dynamo: dynamoService}

	builder := &realtime.Builder{
		Profiles: userProfileService,
		Messages: chatService,
		Unread:   chatService,
	}
	conversationService := &services.ConversationService{
		Matches: matchService,
		Builder: builder,
	}
	changeSource := newChangeSource(matchService)

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Emberly")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Socket.IO server for chat rooms and live conversation feeds
	socketServer := socket.NewSocketServer(changeSource, builder, chatService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket.IO server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterConversationRoutes(r, conversationService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
