package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/NishantDakua/charaks/internal/middleware"
	"github.com/NishantDakua/charaks/internal/models"
	"github.com/NishantDakua/charaks/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext derives the acting admin identity from the JWT claims.
func actorFromContext(c *gin.Context) service.Actor {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}
	}
	name := claims.FullName
	if name == "" {
		name = claims.Email
	}
	return service.Actor{ID: claims.UserID, Name: name}
}
