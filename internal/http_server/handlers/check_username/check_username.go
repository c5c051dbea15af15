package checkUsername

import (
	"log/slog"
	"net/http"

	"whisperbox/internal/auth"
	resp "whisperbox/internal/lib/api/response"
	sl "whisperbox/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `validate:"required,username"`
}

type Response struct {
	resp.Response
}

// New serves the as-you-type availability check on the signup form.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.checkUsername.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req := Request{
			Username: r.URL.Query().Get("username"),
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid username", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		available, err := authService.UsernameAvailable(r.Context(), req.Username)
		if err != nil {
			log.Error("failed to check username", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if !available {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Username is already taken"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK("Username available"),
		})
	}
}
