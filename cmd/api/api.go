package api

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/findash/findash-server/cmd/utils"
	"github.com/findash/findash-server/service/auth"
	"github.com/findash/findash-server/service/transactions"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

// Router builds the full route tree, including the envelope 404 handler.
func (s *APIServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(utils.RequestIDMiddleware)

	subrouter := router.PathPrefix("/api").Subrouter()

	authHandler := auth.NewHandler(s.db)
	authHandler.RegisterRoutes(subrouter)

	transactionHandler := transactions.NewTransactionHandler(s.db)
	transactionHandler.RegisterRoutes(subrouter)

	router.HandleFunc("/", handleWelcome).Methods("GET")
	router.HandleFunc("/api", handleWelcome).Methods("GET")
	router.HandleFunc("/api/health", handleHealth).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "Route not found")
	})

	return router
}

func (s *APIServer) Run() error {
	router := s.Router()

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{clientURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.AllowCredentials(),
	)

	logged := handlers.CombinedLoggingHandler(os.Stdout, cors(router))

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, logged)
}

func handleWelcome(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "Welcome to the Financial Dashboard API",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"message":   "Financial Dashboard API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
