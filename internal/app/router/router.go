package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	historyhandler "hanzi_backend/internal/feature/history/transport/handler"
	modelcataloghandler "hanzi_backend/internal/feature/modelcatalog/transport/handler"
	pronunciationhandler "hanzi_backend/internal/feature/pronunciation/transport/handler"
	recognitionhandler "hanzi_backend/internal/feature/recognition/transport/handler"
	settingshandler "hanzi_backend/internal/feature/settings/transport/handler"
	"hanzi_backend/internal/platform/config"
	platformhandler "hanzi_backend/internal/platform/http/handler"
	jwtmw "hanzi_backend/internal/platform/jwt"
	"hanzi_backend/internal/platform/ratelimit"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health        *platformhandler.HealthHandler
	Recognition   *recognitionhandler.RecognitionHandler
	Settings      *settingshandler.SettingsHandler
	ModelCatalog  *modelcataloghandler.ModelCatalogHandler
	History       *historyhandler.HistoryHandler
	Pronunciation *pronunciationhandler.PronunciationHandler
}

func NewRouter(cfg config.ServerConfig, h Handlers) *gin.Engine {
	r := gin.Default()

	// ブラウザクライアント用
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	// シークレットが設定されている場合のみ JWT を要求する
	v1 := r.Group("/v1")
	if cfg.JWTSecret != "" {
		v1.Use(jwtmw.AuthRequired(cfg.JWTSecret))
	}

	// AI を呼び出すルートはクライアントごとに回数制限
	limiter := ratelimit.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst)
	{
		v1.GET("/status", h.Recognition.Status)
		v1.POST("/recognize", limiter.Middleware(), h.Recognition.Recognize)
		v1.POST("/recognize/text", limiter.Middleware(), h.Recognition.RecognizeText)

		v1.GET("/settings", h.Settings.Get)
		v1.PUT("/settings", h.Settings.Put)
		v1.POST("/models", h.ModelCatalog.List)

		v1.GET("/history", h.History.List)
		v1.DELETE("/history", h.History.Clear)
		v1.GET("/history/:id", h.History.Get)

		v1.GET("/pronunciation", h.Pronunciation.Audio)
		v1.GET("/readings", h.Pronunciation.Readings)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
