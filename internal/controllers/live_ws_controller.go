package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/models"
	"mobil_kargo/internal/notifier"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// liveFrame is an inbound message on a live channel. Couriers push
// location_update frames; everything else is ignored.
type liveFrame struct {
	Type      string   `json:"type"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Timestamp string   `json:"timestamp"`
}

// parseFrameTimestamp accepts RFC3339(Nano) timestamps, assuming UTC when
// no zone suffix is present (mobile clients often omit it).
func parseFrameTimestamp(ts string) (*time.Time, bool) {
	if ts == "" {
		return nil, true
	}
	if !(strings.HasSuffix(ts, "Z") || (len(ts) > 6 && strings.ContainsAny(ts[len(ts)-6:], "+-"))) {
		ts += "Z"
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// HandleLiveWebSocket upgrades the connection and registers it under the
// token's actor id. The server pushes order and location events; courier
// clients may push location_update frames, which follow the same semantics
// as the REST location update. A reconnecting client receives only future
// events.
func HandleLiveWebSocket(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			return
		}
		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Error("failed to upgrade live websocket")
			return
		}

		// All writes, hub pushes and frame acks alike, go through the same
		// serialized channel; gorilla/websocket forbids concurrent writers.
		ch := notifier.NewSyncConn(conn)
		hub.Register(claims.UserID, ch)
		defer func() {
			hub.Unregister(claims.UserID, ch)
			ch.Close()
			logrus.WithField("user_id", claims.UserID).Info("live channel closed")
		}()

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.WithError(err).WithField("user_id", claims.UserID).
						Warn("error reading live channel message")
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			handleLiveFrame(hub, ch, claims.UserID, claims.Role, payload)
		}
	}
}

// handleLiveFrame processes one inbound text frame.
func handleLiveFrame(hub *notifier.Hub, conn notifier.Conn, userID uint, role string, payload []byte) {
	var frame liveFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		conn.WriteJSON(gin.H{"error": "invalid frame"})
		return
	}
	if frame.Type != notifier.EventLocation {
		logrus.WithFields(logrus.Fields{"user_id": userID, "frame_type": frame.Type}).
			Debug("ignoring unexpected live frame")
		return
	}
	if role != models.RoleCourier {
		conn.WriteJSON(gin.H{"error": "only couriers may push location updates"})
		return
	}
	if frame.Latitude == nil || frame.Longitude == nil {
		conn.WriteJSON(gin.H{"error": "latitude and longitude are required"})
		return
	}
	ts, ok := parseFrameTimestamp(frame.Timestamp)
	if !ok {
		conn.WriteJSON(gin.H{"error": "invalid timestamp"})
		return
	}

	sample, err := recordLocation(hub, userID, locationInput{
		Latitude:  frame.Latitude,
		Longitude: frame.Longitude,
		Accuracy:  frame.Accuracy,
		Timestamp: ts,
	})
	if err != nil {
		logrus.WithError(err).WithField("courier_id", userID).
			Error("could not record location from live frame")
		conn.WriteJSON(gin.H{"error": "could not record location"})
		return
	}
	conn.WriteJSON(gin.H{"status": "saved", "sample_id": sample.ID})
}
