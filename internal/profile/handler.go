package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/redmonkez12/profile-api/internal/auth"
	"github.com/redmonkez12/profile-api/internal/avatar"
	"github.com/redmonkez12/profile-api/internal/httputil"
	"github.com/redmonkez12/profile-api/internal/logging"
)

const multipartMemory = 8 << 20

// SaveLimiter throttles profile updates per user
type SaveLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Handler contains HTTP handlers for the profile endpoints
type Handler struct {
	service        *Service
	limiter        SaveLimiter
	maxUploadBytes int64
	pingInterval   time.Duration
}

func NewHandler(service *Service, limiter SaveLimiter, maxUploadBytes int64, pingInterval time.Duration) *Handler {
	if pingInterval <= 0 {
		pingInterval = 25 * time.Second
	}
	return &Handler{
		service:        service,
		limiter:        limiter,
		maxUploadBytes: maxUploadBytes,
		pingInterval:   pingInterval,
	}
}

// UpdateRequest is the JSON form of a profile update. It carries the whole
// prefilled form: name and dob are always written, so omitting one clears it.
type UpdateRequest struct {
	Name        string `json:"name"`
	DOB         string `json:"dob"`
	Email       string `json:"email"`
	PhoneCode   string `json:"phoneCode"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateResponse is returned after a successful update
type UpdateResponse struct {
	Message       string `json:"message"`
	Profile       *View  `json:"profile,omitempty"`
	ImageUploaded bool   `json:"imageUploaded"`
}

// Get returns the caller's profile
// @Summary      Get my profile
// @Description  Read the profile record of the authenticated user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} View
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	view, err := h.service.Load(r.Context(), userID)
	if err != nil {
		h.respondLoadError(w, r, err)
		return
	}

	httputil.RespondJSON(w, view, http.StatusOK)
}

// Events streams the caller's profile as it changes
// @Summary      Follow my profile
// @Description  Server-Sent Events stream; one "profile" event now and one after every change
// @Tags         profile
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200 {object} View
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /profile/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondErrorWithCode(w, "streaming unsupported", httputil.CodeStreamingFailed, http.StatusInternalServerError)
		return
	}

	// Streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	views := make(chan *View)
	errc := make(chan error, 1)
	go func() {
		errc <- h.service.Watch(ctx, userID, func(v *View) {
			select {
			case views <- v:
			case <-ctx.Done():
			}
		})
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	started := false
	for {
		select {
		case v := <-views:
			if !started {
				w.Header().Set("Content-Type", "text/event-stream")
				w.Header().Set("Cache-Control", "no-cache")
				w.Header().Set("Connection", "keep-alive")
				w.Header().Set("X-Accel-Buffering", "no")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			if err := writeEvent(w, "profile", v); err != nil {
				logger.Warn("failed to write profile event", "error", err.Error())
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if started {
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		case err := <-errc:
			if err != nil {
				if !started {
					h.respondLoadError(w, r, err)
					return
				}
				logger.Error("profile stream ended", "error", err.Error())
			}
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}

// Update merges the submitted fields, uploading the image first when one is attached
// @Summary      Update my profile
// @Description  Submits the whole prefilled form. Name and dob are always written, so an omitted one is stored empty; only the contact group the signup method leaves editable is written. Multipart requests may attach an "image" file which is uploaded before the fields are merged.
// @Tags         profile
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name formData string false "Name"
// @Param        dob formData string false "Date of birth"
// @Param        email formData string false "Email (phone sign-ups only)"
// @Param        phoneCode formData string false "Country calling code, e.g. +91 (email/Google sign-ups only)"
// @Param        phoneNumber formData string false "Phone number (email/Google sign-ups only)"
// @Param        image formData file false "New profile image"
// @Success      200 {object} UpdateResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      413 {object} httputil.ErrorResponse
// @Failure      429 {object} httputil.ErrorResponse
// @Failure      502 {object} httputil.ErrorResponse
// @Router       /profile [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}
	logger = logger.WithFields(map[string]any{"user_id": userID})

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(r.Context(), "profile_update:"+userID)
		if err != nil {
			logger.Error("failed to check rate limit", "error", err.Error())
		} else if !allowed {
			logger.Warn("profile update rate limit exceeded")
			httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
			return
		}
	}

	draft, cleanup, err := h.parseDraft(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondErrorWithCode(w, "image is too large", httputil.CodeImageTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn("invalid profile update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	defer cleanup()

	result, err := h.service.Submit(r.Context(), userID, draft)
	if err != nil {
		h.respondSubmitError(w, logger, err)
		return
	}

	resp := UpdateResponse{Message: "Updated...", ImageUploaded: result.ImageUploaded}
	if view, err := h.service.Load(r.Context(), userID); err == nil {
		resp.Profile = view
	} else {
		logger.Warn("failed to reload profile after update", "error", err.Error())
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}

// parseDraft reads a multipart or JSON body into a draft. The returned
// cleanup releases any multipart temp files.
func (h *Handler) parseDraft(w http.ResponseWriter, r *http.Request) (*Draft, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req UpdateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			return nil, noop, err
		}
		return NewDraft(req.Name, req.DOB, req.Email, req.PhoneCode, req.PhoneNumber), noop, nil
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	draft := NewDraft(
		r.FormValue("name"),
		r.FormValue("dob"),
		r.FormValue("email"),
		r.FormValue("phoneCode"),
		r.FormValue("phoneNumber"),
	)

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, cleanup, nil
	}
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		file.Close()
		cleanup()
		return nil, noop, &http.MaxBytesError{Limit: h.maxUploadBytes}
	}

	draft.Stage(&StagedImage{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	})

	return draft, func() {
		file.Close()
		cleanup()
	}, nil
}

func (h *Handler) respondLoadError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeProfileNotFound, http.StatusNotFound)
	case errors.Is(err, ErrInvalidUserID):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidToken, http.StatusUnauthorized)
	default:
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to load profile due to "+err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func (h *Handler) respondSubmitError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		logger.Warn("profile update rejected", "error", err.Error())
		httputil.RespondErrorWithCode(w, verr.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, avatar.ErrInvalidImage):
		logger.Warn("profile image rejected", "error", err.Error())
		httputil.RespondErrorWithCode(w, avatar.ErrInvalidImage.Error(), httputil.CodeInvalidImage, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "profile not found", httputil.CodeProfileNotFound, http.StatusNotFound)
	case errors.Is(err, ErrInvalidUserID):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidToken, http.StatusUnauthorized)
	case errors.Is(err, ErrUpload):
		logger.Error("profile image upload failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to upload due to "+Reason(err, ErrUpload), httputil.CodeUploadFailed, http.StatusBadGateway)
	case errors.Is(err, ErrUpdate):
		logger.Error("profile merge failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update due to "+Reason(err, ErrUpdate), httputil.CodeUpdateFailed, http.StatusBadGateway)
	default:
		logger.Error("profile update failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Failed to update due to "+err.Error(), httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
