package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ActorIDHeader carries the authenticated actor's id, set by the auth gateway upstream
	ActorIDHeader = "X-Actor-ID"
	// ActorIDKey is the gin context key for the actor id
	ActorIDKey = "actor_id"
)

// ErrNoActor is returned when no actor id is present on the request
var ErrNoActor = errors.New("no actor id on request")

// Actor extracts the upstream-authenticated actor id into the gin context.
// Authentication itself happens at the gateway; this service only consumes
// the identity it forwards.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(ActorIDHeader); raw != "" {
			if actorID, err := uuid.Parse(raw); err == nil {
				c.Set(ActorIDKey, actorID)
			}
		}
		c.Next()
	}
}

// GetActorID returns the actor id extracted by the Actor middleware
func GetActorID(c *gin.Context) (uuid.UUID, error) {
	if v, exists := c.Get(ActorIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, nil
		}
	}
	return uuid.Nil, ErrNoActor
}
