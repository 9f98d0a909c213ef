package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/services"
)

// MessageRoutes sets up the chat endpoints. All of them require a token.
func MessageRoutes(api *gin.RouterGroup, messages *services.MessageService, auth gin.HandlerFunc) {
	messageRoutes := api.Group("/messages", auth)
	{
		messageRoutes.POST("", SendMessage(messages))
		messageRoutes.GET("/conversations", GetConversations(messages))
		messageRoutes.GET("/unread", GetUnreadCount(messages))
		messageRoutes.GET("/:otherUserId/:listingId", GetMessages(messages))
		messageRoutes.PATCH("/:messageId/read", MarkAsRead(messages))
	}
}

type sendMessageRequest struct {
	Content    string `json:"content"`
	ReceiverID uint   `json:"receiverId" binding:"required"`
	ListingID  uint   `json:"listingId" binding:"required"`
}

func SendMessage(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if !bindJSON(c, &req) {
			return
		}

		msg, err := messages.Send(c.Request.Context(), middleware.GetUserID(c), req.ReceiverID, req.ListingID, req.Content)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

func GetConversations(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := messages.Conversations(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetMessages returns the thread and marks the caller's incoming messages
// in it as read.
func GetMessages(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		otherUserID, ok := pathID(c, "otherUserId")
		if !ok {
			return
		}
		listingID, ok := pathID(c, "listingId")
		if !ok {
			return
		}

		out, err := messages.Thread(c.Request.Context(), middleware.GetUserID(c), otherUserID, listingID)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// MarkAsRead flips one incoming message to read.
func MarkAsRead(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, ok := pathID(c, "messageId")
		if !ok {
			return
		}

		if err := messages.MarkAsRead(c.Request.Context(), middleware.GetUserID(c), messageID); err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func GetUnreadCount(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := messages.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unreadCount": n})
	}
}
