package httpserver

import (
	"log/slog"

	"whisperbox/internal/auth"
	acceptMessages "whisperbox/internal/http_server/handlers/accept_messages"
	checkUsername "whisperbox/internal/http_server/handlers/check_username"
	getMessages "whisperbox/internal/http_server/handlers/get_messages"
	"whisperbox/internal/http_server/handlers/login"
	sendMessage "whisperbox/internal/http_server/handlers/send_message"
	"whisperbox/internal/http_server/handlers/signup"
	"whisperbox/internal/http_server/handlers/verify"
	"whisperbox/internal/inbox"
	"whisperbox/internal/middleware/authn"
	rateLimit "whisperbox/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

func NewRouter(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	inboxService *inbox.Inbox,
	sessionSecret string,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.With(rateLimit.Signup()).Post("/signup",
		signup.New(log, validate, authService),
	)
	r.With(rateLimit.VerifyCode()).Post("/verify-code",
		verify.New(log, validate, authService),
	)
	r.With(rateLimit.Login()).Post("/login",
		login.New(log, validate, authService),
	)
	r.With(rateLimit.CheckUsername()).Get("/check-username",
		checkUsername.New(log, validate, authService),
	)
	r.With(rateLimit.SendMessage()).Post("/send-message",
		sendMessage.New(log, validate, inboxService),
	)

	r.Group(func(r chi.Router) {
		r.Use(authn.New(log, sessionSecret))

		r.Get("/messages",
			getMessages.New(log, inboxService),
		)
		r.Get("/accept-messages",
			acceptMessages.NewStatus(log, inboxService),
		)
		r.Post("/accept-messages",
			acceptMessages.New(log, validate, inboxService),
		)
	})

	return r
}
