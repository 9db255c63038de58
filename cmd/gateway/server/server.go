package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"auction-live/internal/livefeed"
)

type Server struct {
	port         int
	upstreamHost string
	hub          *livefeed.Hub
	log          zerolog.Logger
}

func NewServer(hub *livefeed.Hub, log zerolog.Logger) *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}
	upstream := os.Getenv("MARKETPLACE_API_HOST")

	s := &Server{
		port:         port,
		upstreamHost: upstream,
		hub:          hub,
		log:          log,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.registerRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // streaming endpoints hold the response open
	}
}

func (s *Server) registerRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin())
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/auctions/:id", s.ProxyAuctionDetail)
	r.GET("/auctions/:id/bids", s.ProxyRecentBids)
	r.GET("/users/:id/conversations", s.ProxyConversations)
	r.GET("/users/:id/disputes", s.ProxyDisputes)

	r.GET("/events/sse/:group", livefeed.SSEHeadersMiddleware(), livefeed.SSEHandler(s.hub))
	r.GET("/events/ws", gin.WrapH(&livefeed.WSHandler{Hub: s.hub, Log: s.log}))

	return r
}

func allowedOrigin() string {
	if o := os.Getenv("ALLOWED_ORIGIN"); o != "" {
		return o
	}
	return "http://localhost:5173"
}
