package addcustomexercise

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/bootstrap"
	httputil "github.com/pep-pro/server/pkg/infrastructure/http"
	sentryutil "github.com/pep-pro/server/pkg/infrastructure/sentry"
	"github.com/pep-pro/server/pkg/prescribe"
	"github.com/pep-pro/server/pkg/types"
)

var (
	svc     *bootstrap.Service
	svcOnce sync.Once
	svcErr  error
)

func init() {
	functions.HTTP("AddCustomExercise", AddCustomExercise)
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
		if err := sentryutil.Init(sentryutil.ConfigFromEnv("add-custom-exercise"), slog.Default()); err != nil {
			slog.Warn("Sentry init failed", "error", err)
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// AddCustomExerciseRequest is the expected request body.
type AddCustomExerciseRequest struct {
	PatientID         string `json:"patient_id"`
	PTID              string `json:"pt_id"`
	ExerciseName      string `json:"exercise_name"`
	VoiceInstructions string `json:"voice_instructions,omitempty"`
	Provider          string `json:"provider,omitempty"`
	// Base64-encoded clinician recording
	VideoBase64      string `json:"video_base64,omitempty"`
	VideoContentType string `json:"video_content_type,omitempty"`
}

// AddCustomExerciseResponse is the success response body.
type AddCustomExerciseResponse struct {
	Status   string                 `json:"status"`
	Exercise *types.Exercise        `json:"exercise"`
	Link     *types.PatientExercise `json:"patient_exercise"`
	Reused   bool                   `json:"reused"`
}

// AddCustomExercise is the HTTP entry point for the clinician
// custom-exercise path.
func AddCustomExercise(w http.ResponseWriter, r *http.Request) {
	if httputil.SetCORSHeaders(w, r) {
		return
	}

	ctx := r.Context()
	logger := bootstrap.NewLogger("add-custom-exercise")
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

	var req AddCustomExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var videoData []byte
	if req.VideoBase64 != "" {
		videoData, err = base64.StdEncoding.DecodeString(req.VideoBase64)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Invalid base64 video data")
			return
		}
	}

	service := prescribe.NewService(svc, logger)
	result, err := service.AddCustom(ctx, prescribe.CustomRequest{
		PatientID:         req.PatientID,
		PTID:              req.PTID,
		Name:              req.ExerciseName,
		VoiceInstructions: req.VoiceInstructions,
		ProviderTag:       req.Provider,
		VideoData:         videoData,
		VideoContentType:  req.VideoContentType,
	})
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Custom exercise failed", "patient_id", req.PatientID, "error", err)
			sentryutil.CaptureException(err, map[string]interface{}{"patient_id": req.PatientID}, logger)
		} else {
			logger.Warn("Custom exercise rejected", "patient_id", req.PatientID, "error", err)
		}
		httputil.WriteError(w, status, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AddCustomExerciseResponse{
		Status:   "success",
		Exercise: result.Exercise,
		Link:     result.Link,
		Reused:   result.Reused,
	})
}
