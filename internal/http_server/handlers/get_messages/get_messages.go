package getMessages

import (
	"log/slog"
	"net/http"

	"whisperbox/internal/inbox"
	resp "whisperbox/internal/lib/api/response"
	sl "whisperbox/internal/lib/logger"
	"whisperbox/internal/middleware/authn"
	"whisperbox/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Messages []models.Message `json:"messages"`
}

func New(
	log *slog.Logger,
	inboxService *inbox.Inbox,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.getMessages.New"

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

		messages, err := inboxService.Messages(r.Context(), session.UserID)
		if err != nil {
			log.Error("failed to get messages", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if messages == nil {
			messages = []models.Message{}
		}

		render.JSON(w, r, Response{
			Response: resp.OK(""),
			Messages: messages,
		})
	}
}
