package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	api "github.com/classhub/lms-backend/internal/api/http"
	"github.com/classhub/lms-backend/internal/auth"
	"github.com/classhub/lms-backend/internal/config"
	"github.com/classhub/lms-backend/internal/db"
	"github.com/classhub/lms-backend/internal/grading"
	"github.com/classhub/lms-backend/internal/quiz"
	"github.com/classhub/lms-backend/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}
	if err := db.EnsureUser(ctx, dbh, db.Driver(cfg.DBDriver),
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, "admin", time.Now().Unix()); err != nil {
		log.WithError(err).Fatal("seed admin failed")
	}

	// --- Core ---
	store := quiz.NewSQLStore(dbh)
	ledger := quiz.NewAttemptLedger(store, store)
	recorder := quiz.NewAnswerRecorder(store, store, store, grading.NewGrader())
	engine := quiz.NewScoringEngine(store, store, store)
	presenter := quiz.NewResultPresenter(engine, store, store)
	checker := rbac.NewChecker(nil)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))

		// Student flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.StartAttemptHandler(ledger))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAnswersHandler(recorder))

		// Result viewing: owner / owning teacher / admin, checked in the core
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}/result", api.GetAttemptResultHandler(presenter))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store, checker))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "db": cfg.DBDriver}).Info("listening")
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
