package acceptMessages

import (
	"errors"
	"log/slog"
	"net/http"

	"whisperbox/internal/inbox"
	resp "whisperbox/internal/lib/api/response"
	sl "whisperbox/internal/lib/logger"
	"whisperbox/internal/middleware/authn"
	"whisperbox/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	// Pointer so an explicit false survives the required check.
	AcceptMessages *bool `json:"accept_messages" validate:"required"`
}

type Response struct {
	resp.Response
	IsAccepting bool `json:"is_accepting"`
}

// New toggles the accept-flag for the authenticated user.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	inboxService *inbox.Inbox,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.acceptMessages.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		session, ok := authn.FromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Not authenticated"))

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		accepting, err := inboxService.SetAccepting(r.Context(), session.UserID, *req.AcceptMessages)
		if err != nil {
			log.Error("failed to update accept-flag", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("accept-flag updated", slog.Bool("is_accepting", accepting))

		render.JSON(w, r, Response{
			Response:    resp.OK("Accepting-messages status updated"),
			IsAccepting: accepting,
		})
	}
}

// NewStatus reads the live accept-flag from storage; the snapshot in the
// session token is not trusted for mutable state.
func NewStatus(
	log *slog.Logger,
	inboxService *inbox.Inbox,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.acceptMessages.NewStatus"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		session, ok := authn.FromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Not authenticated"))

			return
		}

		accepting, err := inboxService.Accepting(r.Context(), session.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to get accept-flag", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:    resp.OK("Accepting-messages status fetched"),
			IsAccepting: accepting,
		})
	}
}
