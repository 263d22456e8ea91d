package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"greeting/internal/models"
)

// SpanGreetingCall nom du span ouvert autour de chaque salutation
const SpanGreetingCall = "greeting_call"

// LetterProvider fournit la lettre configurée au démarrage
type LetterProvider interface {
	Letter() string
}

// RequestCounter compte les salutations servies
type RequestCounter interface {
	IncrementRequestCounter(ctx context.Context)
}

// GreetingHandler gère l'endpoint de salutation
type GreetingHandler struct {
	letters LetterProvider
	counter RequestCounter
	tracer  trace.Tracer
}

// NewGreetingHandler crée un nouveau handler de salutation
func NewGreetingHandler(letters LetterProvider, counter RequestCounter, tracer trace.Tracer) *GreetingHandler {
	return &GreetingHandler{
		letters: letters,
		counter: counter,
		tracer:  tracer,
	}
}

// GetGreeting retourne la lettre configurée
// @Summary Salutation
// @Description Incrémente greeting_requests et retourne la lettre du service
// @Tags greeting
// @Produce json
// @Success 200 {object} models.Greeting
// @Router /greeting [get]
func (h *GreetingHandler) GetGreeting(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), SpanGreetingCall)
	defer span.End()

	h.counter.IncrementRequestCounter(ctx)

	greeting := models.NewGreeting(h.letters.Letter())
	span.SetAttributes(attribute.String("greeting.letter", greeting.Letter))

	c.JSON(http.StatusOK, greeting)
}
