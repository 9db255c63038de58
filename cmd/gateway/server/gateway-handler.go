package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// The four reads the dashboards need are proxied verbatim to the upstream
// marketplace API; the gateway adds nothing but CORS and the push hub.

func (s *Server) ProxyAuctionDetail(c *gin.Context) {
	s.proxyGet(c, fmt.Sprintf("/auctions/%s", c.Param("id")))
}

func (s *Server) ProxyRecentBids(c *gin.Context) {
	s.proxyGet(c, fmt.Sprintf("/auctions/%s/bids", c.Param("id")))
}

func (s *Server) ProxyConversations(c *gin.Context) {
	s.proxyGet(c, fmt.Sprintf("/users/%s/conversations", c.Param("id")))
}

func (s *Server) ProxyDisputes(c *gin.Context) {
	s.proxyGet(c, fmt.Sprintf("/users/%s/disputes", c.Param("id")))
}

func (s *Server) proxyGet(c *gin.Context, path string) {
	url := fmt.Sprintf("http://%s%s", s.upstreamHost, path)
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create request: %v", err)})
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to get response: %s", err.Error())})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errorResponse map[string]interface{}
		if err := json.Unmarshal(body, &errorResponse); err == nil {
			c.JSON(resp.StatusCode, errorResponse)
		} else {
			c.JSON(resp.StatusCode, gin.H{"error": string(body)})
		}
		return
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode response"})
		return
	}
	c.JSON(http.StatusOK, payload)
}
