package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"whisperbox/internal/auth"
	resp "whisperbox/internal/lib/api/response"
	sl "whisperbox/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Pass     string `json:"password" validate:"required,min=3"`
}

type Response struct {
	resp.Response
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.signup.New"

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

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = authService.Signup(ctx, req.Username, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Username is already taken"))

				return
			}
			if errors.Is(err, auth.ErrEmailRegistered) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Email already registered"))

				return
			}

			log.Error("failed to sign up user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User signed up")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK("User registered successfully. Please verify your email"),
		})
	}
}
