package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hamexam/backend/internal/auth"
	"github.com/hamexam/backend/internal/config"
	"github.com/hamexam/backend/internal/database"
	"github.com/hamexam/backend/internal/exam"
	"github.com/hamexam/backend/internal/logger"
	"github.com/hamexam/backend/internal/middleware"
	"github.com/hamexam/backend/internal/parser"
	"github.com/hamexam/backend/internal/questions"
	"github.com/hamexam/backend/internal/system"
	"github.com/hamexam/backend/internal/wrongbook"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	// Question bank and ledger storage
	bank, err := questions.LoadBank(context.Background(), questionSource(cfg, db, log))
	if err != nil {
		log.Fatalw("failed to load question bank", "source", cfg.QuestionSource, "error", err)
	}
	log.Infow("question bank loaded", "source", cfg.QuestionSource, "questions", bank.Len())

	ledgerStore, err := ledgerStore(cfg, db)
	if err != nil {
		log.Fatalw("failed to open ledger store", "backend", cfg.LedgerBackend, "error", err)
	}

	// Initialize services and handlers
	users := auth.NewStore(db)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	ledgers := wrongbook.NewService(ledgerStore, log)
	examService := exam.NewService(bank, ledgers, log, exam.Options{
		ExamSize:     cfg.ExamSize,
		RemedialSize: cfg.RemedialSize,
	})

	authHandler := auth.NewHandler(users, tokens, log)
	questionHandler := questions.NewHandler(bank)
	examHandler := exam.NewHandler(examService, log)
	wrongbookHandler := wrongbook.NewHandler(ledgers, log)
	systemHandler := system.NewHandler(bank, ledgers, log)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	api.HandleFunc("/questions/{id}", questionHandler.GetQuestion).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(auth.NewProvider(tokens, users)))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/exam", examHandler.GetExam).Methods("GET")
	protected.HandleFunc("/exam/custom", examHandler.GetCustomExam).Methods("GET")
	protected.HandleFunc("/exam/submit", examHandler.SubmitExam).Methods("POST")

	protected.HandleFunc("/wrong-questions", wrongbookHandler.ListWrongQuestions).Methods("GET")
	protected.HandleFunc("/wrong-questions/practice", wrongbookHandler.Practice).Methods("POST")
	protected.HandleFunc("/wrong-questions/practice-exam", examHandler.GetPracticeExam).Methods("GET")
	protected.HandleFunc("/wrong-questions/practice-submit", examHandler.SubmitPracticeExam).Methods("POST")

	protected.HandleFunc("/system/status", systemHandler.Status).Methods("GET")
	protected.HandleFunc("/system/reset", systemHandler.Reset).Methods("POST")

	// Health check
	r.HandleFunc("/health", system.Health).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalw("failed to listen", "addr", server.Addr, "error", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.Infow("server starting", "port", cfg.Port, "env", cfg.AppEnv, "ledger_backend", cfg.LedgerBackend)
	if err := serve(server, ln, stop, cfg.ShutdownTimeout, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
	log.Info("server stopped")
}

// serve runs server on ln until stop fires, then drains active requests for
// up to timeout. It returns only once draining is over, so deferred cleanup
// in main cannot close the database under a running request.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, timeout time.Duration, log *zap.SugaredLogger) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-stop

		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorw("server forced to shutdown", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

func questionSource(cfg *config.Config, db *sql.DB, log *zap.SugaredLogger) questions.Source {
	src := cfg.QuestionSource
	switch {
	case src == config.QuestionSourceDB:
		return questions.NewStore(db)
	case strings.EqualFold(filepath.Ext(src), ".json"):
		return questions.JSONSource{Path: src}
	default:
		return parser.TextSource{Path: src, Log: log}
	}
}

func ledgerStore(cfg *config.Config, db *sql.DB) (wrongbook.Store, error) {
	if cfg.LedgerBackend == config.LedgerBackendFile {
		return wrongbook.NewFileStore(filepath.Join(cfg.DataDir, "ledgers"))
	}
	return wrongbook.NewPostgresStore(db), nil
}
