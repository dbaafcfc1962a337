package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/http/middleware"
	"github.com/xavierca1/fitness-sales/internal/usecase"
)

// WebhookHandler receives submissions from the two site builders. Both routes
// normalize into the same field map; the form name decides what runs.
//
// Response codes follow webhook retry semantics: anything the pipeline
// resolved by itself (including validation failures, which the client fixes
// over mail) answers 200 so the site does not re-send, and only transport or
// storage failures answer 500 to trigger a retry.
type WebhookHandler struct {
	Intake   *usecase.SaleIntake
	StaffOps *usecase.StaffOps
}

func NewWebhookHandler(intake *usecase.SaleIntake, staffOps *usecase.StaffOps) *WebhookHandler {
	return &WebhookHandler{Intake: intake, StaffOps: staffOps}
}

// HandleTilda accepts the form-encoded webhook. The form name travels in the
// "formname" field.
func (h *WebhookHandler) HandleTilda(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form encoding", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[strings.ToLower(key)] = strings.TrimSpace(values[0])
		}
	}

	h.dispatch(w, r, fields["formname"], fields)
}

// HandleYandex accepts the JSON webhook: a jsonrpc envelope with the form
// fields nested under "params". The form name travels in params' "type".
func (h *WebhookHandler) HandleYandex(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad JSON", http.StatusBadRequest)
		return
	}

	// Bare payloads without the envelope show up from manual form tests.
	if params, ok := payload["params"].(map[string]any); ok {
		payload = params
	}

	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			fields[strings.ToLower(key)] = strings.TrimSpace(v)
		case float64:
			fields[strings.ToLower(key)] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	h.dispatch(w, r, fields["type"], fields)
}

func (h *WebhookHandler) dispatch(w http.ResponseWriter, r *http.Request, formName string, fields map[string]string) {
	// Site builders probe the endpoint when the webhook is configured.
	// Answer OK and persist nothing.
	if fields[usecase.FieldTest] == "test" {
		log.Printf("🧪 [WEBHOOK] probe request for form %q", formName)
		respond(w, http.StatusOK, "test ok")
		return
	}

	sub := usecase.NewSubmission(fields)
	ctx := r.Context()

	var err error
	switch formName {
	case "add_worker":
		err = h.StaffOps.AddStaff(ctx, sub)
	case "delete_worker":
		err = h.StaffOps.RemoveStaff(ctx, sub)
	case "add_workout_program":
		err = h.StaffOps.AddWorkoutProgram(ctx, sub)
	case "load_recepies":
		err = h.StaffOps.LoadRecipes(ctx, sub)
	default:
		saleType, ok := entity.ParseSaleType(formName)
		if !ok {
			log.Printf("⚠️ [WEBHOOK] unknown form %q", formName)
			respond(w, http.StatusBadRequest, fmt.Sprintf("unknown form %q", formName))
			return
		}
		err = h.Intake.Submit(ctx, saleType, sub)
		middleware.RecordSale(saleType.String(), outcome(err))
	}

	if err == nil {
		respond(w, http.StatusOK, "ok")
		return
	}

	if usecase.IsDomainError(err) {
		// Resolved inside the pipeline (corrective mail, stale key, bad
		// admin input). Retrying the webhook would change nothing.
		log.Printf("⚠️ [WEBHOOK] form %q: %v", formName, err)
		respond(w, http.StatusOK, err.Error())
		return
	}

	log.Printf("❌ [WEBHOOK] form %q: %v", formName, err)
	respond(w, http.StatusInternalServerError, "processing failed, please retry")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case usecase.IsDomainError(err):
		return "rejected"
	default:
		return "failed"
	}
}

func respond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
