// Command api runs all three HTTP functions behind one local router.
// Deployed environments run each function separately; this binary exists
// for local development against the Firestore emulator.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	addcustomexercise "github.com/pep-pro/server/functions/add-custom-exercise"
	generateexercises "github.com/pep-pro/server/functions/generate-exercises"
	modifyexercise "github.com/pep-pro/server/functions/modify-exercise"
	"github.com/pep-pro/server/pkg/bootstrap"
)

func main() {
	bootstrap.InitLogger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/generate-exercises", generateexercises.GenerateExercises)
	r.Post("/add-custom-exercise", addcustomexercise.AddCustomExercise)
	r.Post("/modify-exercise", modifyexercise.ModifyExercise)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("api listening", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
