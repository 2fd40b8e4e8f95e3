package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Paginated writes a list body with the pagination block next to data.
func Paginated(c *gin.Context, statusCode int, data interface{}, pagination interface{}) {
	c.JSON(statusCode, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Error codes shared by every handler.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "BOOKING_CONFLICT"
	CodeRoomInUse  = "ROOM_IN_USE"
	CodeRoomTaken  = "ROOM_NUMBER_TAKEN"
	CodeInternal   = "INTERNAL_ERROR"
)
