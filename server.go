package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/careparrot/medsack/nlp"
	"github.com/careparrot/medsack/sdk"
	"github.com/careparrot/medsack/store"
)

// POST /api/process
// GET  /api/entities
// GET  /health
// GET  /metrics

const _VERSION = "1.0.0"

type processParams struct {
	Text                string   `json:"text" binding:"required"`
	ConversationHistory []string `json:"conversation_history"`
	ConversationID      string   `json:"conversation_id"`
	PipelineType        string   `json:"pipeline_type"`
}

type processEnvelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type conversationResult struct {
	*sdk.ProcessResponse
	ConversationID      string                   `json:"conversation_id,omitempty"`
	ConversationContext *sdk.ConversationContext `json:"conversation_context,omitempty"`
}

type medServer struct {
	transformer *sdk.Pipeline
	llm         sdk.Processor
	log         *zap.Logger
}

func (server *medServer) processHandler(ctx *gin.Context) {
	var params processParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, processEnvelope{Error: "malformed request body"})
		return
	}

	pipeline_type := "transformer"
	var pipeline sdk.Processor = server.transformer
	if params.PipelineType == "llm" && server.llm != nil {
		pipeline_type, pipeline = "llm", server.llm
	}

	started := time.Now()
	result, err := server.process(ctx, pipeline, pipeline_type, &params)
	if err != nil {
		processedNotes.WithLabelValues(pipeline_type, "error").Inc()
		status := http.StatusBadGateway
		var annotator_err *sdk.AnnotatorError
		if errors.As(err, &annotator_err) {
			annotatorFailures.WithLabelValues(annotator_err.Annotator).Inc()
		}
		if errors.Is(err, sdk.ErrEmptyText) {
			status = http.StatusUnprocessableEntity
		}
		server.log.Error("processing failed", zap.Error(err))
		ctx.JSON(status, processEnvelope{Error: err.Error()})
		return
	}
	processedNotes.WithLabelValues(pipeline_type, "ok").Inc()
	processingSeconds.WithLabelValues(pipeline_type).Observe(time.Since(started).Seconds())
	ctx.JSON(http.StatusOK, processEnvelope{Success: true, Result: result})
}

func (server *medServer) process(ctx *gin.Context, pipeline sdk.Processor, pipeline_type string, params *processParams) (*conversationResult, error) {
	// single-shot unless the caller supplied history for the transformer path
	if len(params.ConversationHistory) == 0 || pipeline_type != "transformer" {
		response, err := pipeline.ProcessText(ctx.Request.Context(), params.Text)
		if err != nil {
			return nil, err
		}
		return &conversationResult{ProcessResponse: response}, nil
	}

	conversation_id := params.ConversationID
	if conversation_id == "" {
		conversation_id = uuid.NewString()
	}
	utterances := append(append([]string{}, params.ConversationHistory...), params.Text)
	responses, conv_context, err := server.transformer.ProcessConversation(ctx.Request.Context(), conversation_id, utterances)
	if err != nil {
		return nil, err
	}
	return &conversationResult{
		ProcessResponse:     responses[len(responses)-1],
		ConversationID:      conversation_id,
		ConversationContext: conv_context,
	}, nil
}

func (server *medServer) entitiesHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"transformer_entities": nlp.MedicalEntityLabels,
		"transformer_intents":  nlp.IntentLabels,
		"llm_capabilities": gin.H{
			"entities": sdk.EntityBuckets,
			"intents":  nlp.IntentLabels,
		},
	})
}

func healthHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "version": _VERSION})
}

func initializeRateLimiter(limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(ctx *gin.Context) {
		if limiter.Allow() {
			ctx.Next()
		} else {
			ctx.AbortWithStatus(http.StatusTooManyRequests)
		}
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		request_id := uuid.NewString()
		ctx.Set("request_id", request_id)
		started := time.Now()
		ctx.Next()
		logger.Info("request",
			zap.String("request_id", request_id),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("took", time.Since(started)))
	}
}

func newServer(server *medServer, config *ServiceConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(server.log))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(initializeRateLimiter(config.RateLimit, config.RateBurst))
	api.POST("/process", server.processHandler)
	api.GET("/entities", server.entitiesHandler)
	return router
}

func newLogger(level string) *zap.Logger {
	zap_config := zap.NewProductionConfig()
	if parsed, err := zap.ParseAtomicLevel(level); err == nil {
		zap_config.Level = parsed
	}
	logger, _ := zap_config.Build()
	return logger
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalln("configuration not working:", err)
	}
	logger := newLogger(config.LogLevel)
	defer logger.Sync()

	// conversation context store: redis when configured, in-process otherwise
	var contexts sdk.ContextStore
	if config.RedisURL != "" {
		redis_store, err := store.NewRedisStore[sdk.ConversationContext](
			config.RedisURL, "medsack:context", logger,
			store.WithTTL[sdk.ConversationContext](config.ContextTTL))
		if err != nil {
			logger.Fatal("redis initialization failed", zap.Error(err))
		}
		defer redis_store.Close()
		contexts = redis_store
	} else {
		contexts = store.NewMemoryStore[sdk.ConversationContext](
			store.WithTTL[sdk.ConversationContext](config.ContextTTL))
	}

	transformer := sdk.NewPipeline(
		nlp.NewGlinerDriver(config.GlinerURL, config.InferenceAuthToken, logger),
		nlp.NewZeroShotDriver(config.ZeroShotURL, config.InferenceAuthToken, logger),
		nlp.NewTemporalDriver(config.LinguisticURL, config.InferenceAuthToken, logger),
		logger,
		sdk.WithContextStore(contexts))

	server := &medServer{transformer: transformer, log: logger}
	if config.GroqAPIKey != "" {
		groq, err := nlp.NewGroqMedicalClient(config.GroqAPIKey, config.GroqModel, logger)
		if err != nil {
			logger.Fatal("groq client initialization failed", zap.Error(err))
		}
		server.llm = sdk.NewLLMPipeline(groq, logger)
	}

	if err := newServer(server, config).Run(config.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
