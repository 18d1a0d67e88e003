package generateexercises

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/bootstrap"
	httputil "github.com/pep-pro/server/pkg/infrastructure/http"
	sentryutil "github.com/pep-pro/server/pkg/infrastructure/sentry"
	"github.com/pep-pro/server/pkg/recommend"
	"github.com/pep-pro/server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("GenerateExercises", GenerateExercises)
}

func initService(ctx context.Context) (*bootstrap.Service, error) {
	if svc != nil {
		return svc, nil
	}
	svcOnce.Do(func() {
		baseSvc, err := bootstrap.NewService(ctx)
		if err != nil {
			slog.Error("Failed to initialize service", "error", err)
			svcErr = err
			return
		}
		if err := sentryutil.Init(sentryutil.ConfigFromEnv("generate-exercises"), slog.Default()); err != nil {
			slog.Warn("Sentry init failed", "error", err)
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// GenerateExercisesRequest is the expected request body.
type GenerateExercisesRequest struct {
	PatientID string `json:"patient_id"`
	Provider  string `json:"provider,omitempty"`
	// Legacy field name accepted for older clients.
	LLMProvider string `json:"llm_provider,omitempty"`
}

// GenerateExercisesResponse is the success response body.
type GenerateExercisesResponse struct {
	Status    string            `json:"status"`
	Exercises []*types.Exercise `json:"exercises"`
	Source    string            `json:"source"`
}

// GenerateExercises is the HTTP entry point for exercise recommendation.
func GenerateExercises(w http.ResponseWriter, r *http.Request) {
	if httputil.SetCORSHeaders(w, r) {
		return
	}

	ctx := r.Context()
	logger := bootstrap.NewLogger("generate-exercises")
	defer sentryutil.RecoverAndCapture(logger)

	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	svc, err := initService(ctx)
	if err != nil {
		logger.Error("Service init failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req GenerateExercisesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tag := req.Provider
	if tag == "" {
		tag = req.LLMProvider
	}

	pipeline := recommend.NewPipeline(svc, logger)
	result, err := pipeline.Run(ctx, recommend.Request{
		PatientID:   req.PatientID,
		ProviderTag: tag,
	})
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Recommendation failed", "patient_id", req.PatientID, "error", err)
			sentryutil.CaptureException(err, map[string]interface{}{"patient_id": req.PatientID}, logger)
		} else {
			logger.Warn("Recommendation rejected", "patient_id", req.PatientID, "error", err)
		}
		httputil.WriteError(w, status, err.Error())
		return
	}

	logger.Info("Recommendation complete",
		"patient_id", req.PatientID,
		"source", result.Source,
		"count", len(result.Exercises),
	)

	httputil.WriteJSON(w, http.StatusOK, GenerateExercisesResponse{
		Status:    "success",
		Exercises: result.Exercises,
		Source:    result.Source,
	})
}
