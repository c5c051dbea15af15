package sendMessage

import (
	"errors"
	"log/slog"
	"net/http"

	"whisperbox/internal/inbox"
	resp "whisperbox/internal/lib/api/response"
	sl "whisperbox/internal/lib/logger"
	"whisperbox/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required,min=10,max=300"`
}

type Response struct {
	resp.Response
}

// New accepts anonymous messages; no session is required and no sender
// identity is recorded. Whether the target exists and whether it is
// accepting are reported identically.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	inboxService *inbox.Inbox,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sendMessage.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		err = inboxService.Send(r.Context(), req.Username, req.Content)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) || errors.Is(err, inbox.ErrNotAccepting) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found or not accepting messages"))

				return
			}

			log.Error("failed to send message", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Message could not be sent"))

			return
		}

		log.Info("Message delivered")

		render.JSON(w, r, Response{
			Response: resp.OK("Message sent"),
		})
	}
}
