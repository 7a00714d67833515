package handlers

import (
	"net/http"

	"github.com/karimahmed315/task-manager/internal/dto"
	"github.com/karimahmed315/task-manager/internal/nlp"

	"github.com/gin-gonic/gin"
)

// ParseHandler proxies natural-language date/time parsing to the external
// service.
type ParseHandler struct {
	client *nlp.Client
}

// NewParseHandler returns a new ParseHandler.
func NewParseHandler(client *nlp.Client) *ParseHandler {
	return &ParseHandler{client: client}
}

// Parse godoc
// @Summary      Parse natural-language date/time text
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.ParseDateTimeRequest  true  "Free-form text"
// @Success      200   {object}  nlp.ParsedDateTime
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /parse-datetime [post]
func (h *ParseHandler) Parse(c *gin.Context) {
	var req dto.ParseDateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "natural-language parsing is not configured"})
		return
	}
	out, err := h.client.Parse(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
