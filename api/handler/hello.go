package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagemeta/models"
)

// Hello returns a handler for /hello.
func Hello() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GreetRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.MsgGreetFailed})
			return
		}
		req.Defaults()

		c.JSON(http.StatusOK, models.GreetingResponse{
			Message: fmt.Sprintf("Hello, %s!", req.Name),
		})
	}
}
