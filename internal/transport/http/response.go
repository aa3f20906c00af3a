package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// okMessage 以 200 返回一条提示文本。
func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// fail 以指定状态码返回错误文本。
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// internalError 统一的 500 响应，细节只进日志不出网。
func internalError(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, message)
}
