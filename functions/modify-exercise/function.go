package modifyexercise

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
	functions.HTTP("ModifyExercise", ModifyExercise)
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
		if err := sentryutil.Init(sentryutil.ConfigFromEnv("modify-exercise"), slog.Default()); err != nil {
			slog.Warn("Sentry init failed", "error", err)
		}
		svc = baseSvc
	})
	return svc, svcErr
}

// ModifyExerciseRequest is the expected request body. Omitted optional
// fields leave the stored prescription values untouched.
type ModifyExerciseRequest struct {
	PatientExerciseID string  `json:"patient_exercise_id"`
	PTID              string  `json:"pt_id"`
	Frequency         *string `json:"frequency,omitempty"`
	Sets              *int    `json:"sets,omitempty"`
	Repetitions       *int    `json:"repetitions,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	// Base64-encoded clinician recording
	VideoBase64      string `json:"video_base64,omitempty"`
	VideoContentType string `json:"video_content_type,omitempty"`
}

// ModifyExerciseResponse is the success response body. Exercise is only
// set when a recording forked the linked exercise.
type ModifyExerciseResponse struct {
	Status   string                 `json:"status"`
	Link     *types.PatientExercise `json:"patient_exercise"`
	Exercise *types.Exercise        `json:"exercise,omitempty"`
}

// ModifyExercise is the HTTP entry point for prescription changes.
func ModifyExercise(w http.ResponseWriter, r *http.Request) {
	if httputil.SetCORSHeaders(w, r) {
		return
	}

	ctx := r.Context()
	logger := bootstrap.NewLogger("modify-exercise")
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

	var req ModifyExerciseRequest
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
	result, err := service.Modify(ctx, prescribe.ModifyRequest{
		PatientExerciseID: req.PatientExerciseID,
		PTID:              req.PTID,
		Frequency:         req.Frequency,
		Sets:              req.Sets,
		Repetitions:       req.Repetitions,
		Notes:             req.Notes,
		VideoData:         videoData,
		VideoContentType:  req.VideoContentType,
	})
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Modification failed", "patient_exercise_id", req.PatientExerciseID, "error", err)
			sentryutil.CaptureException(err, map[string]interface{}{"patient_exercise_id": req.PatientExerciseID}, logger)
		} else {
			logger.Warn("Modification rejected", "patient_exercise_id", req.PatientExerciseID, "error", err)
		}
		httputil.WriteError(w, status, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ModifyExerciseResponse{
		Status:   "success",
		Link:     result.Link,
		Exercise: result.Exercise,
	})
}
