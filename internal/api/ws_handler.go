package api

import (
	"context"
	"log"
	"net/http"
	"sync"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/realtime"
	"verum/academy-app/internal/repository"
	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Snapshot message types pushed over the wire.
const (
	msgFeedSnapshot    = "feed.snapshot"
	msgReviewSnapshot  = "review.snapshot"
	msgProfileSnapshot = "profile.snapshot"
	msgMediaSnapshot   = "media.snapshot"
	msgAgendaSnapshot  = "agenda.snapshot"
)

// WSHandler upgrades connections and bridges store subscriptions onto hub
// topics. One store subscription is held per live topic, reference counted
// across clients, and cancelled when the last client disconnects.
type WSHandler struct {
	hub            *realtime.Hub
	feedService    service.FeedService
	profileService service.ProfileService
	matchService   service.MatchService

	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[string]*topicSub
}

type topicSub struct {
	cancel func()
	refs   int
}

func NewWSHandler(hub *realtime.Hub, feedService service.FeedService, profileService service.ProfileService, matchService service.MatchService) *WSHandler {
	return &WSHandler{
		hub:            hub,
		feedService:    feedService,
		profileService: profileService,
		matchService:   matchService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth happens in the middleware; origins are the
			// app's own clients.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[string]*topicSub),
	}
}

// acquire opens the topic's store subscription if this is the first
// client, otherwise bumps the reference count.
func (h *WSHandler) acquire(topic string, start func() (func(), error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[topic]; ok {
		sub.refs++
		return nil
	}

	cancel, err := start()
	if err != nil {
		return err
	}
	h.subs[topic] = &topicSub{cancel: cancel, refs: 1}
	return nil
}

// release drops one reference and cancels the store subscription when the
// last client on the topic disconnects.
func (h *WSHandler) release(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[topic]
	if !ok {
		return
	}
	sub.refs--
	if sub.refs > 0 {
		return
	}
	delete(h.subs, topic)
	sub.cancel()
}

// serve upgrades the connection, joins the topic and blocks until the
// client disconnects, then releases the topic's subscription.
func (h *WSHandler) serve(c *gin.Context, topic string, start func() (func(), error)) {
	if err := h.acquire(topic, start); err != nil {
		log.Printf("ERROR: opening subscription for topic %s: %v", topic, err)
		abortWithError(c, http.StatusInternalServerError, "Failed to open live subscription")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.release(topic)
		log.Printf("websocket upgrade failed for topic %s: %v", topic, err)
		return
	}

	client := realtime.NewClient(h.hub, conn, topic)
	h.hub.Register <- client

	go client.WritePump()
	client.ReadPump() // blocks until disconnect

	h.release(topic)
}

// Feed godoc
// @Summary Live community feed
// @Description Pushes a full snapshot of the visible feed on every change.
// @Tags Live
// @Security BearerAuth
// @Param limit query int false "Maximum items per snapshot"
// @Router /ws/feed [get]
func (h *WSHandler) Feed(c *gin.Context) {
	limit := intQuery(c, "limit", 0)
	topic := realtime.TopicFeed(limit)

	h.serve(c, topic, func() (func(), error) {
		cancel, err := h.feedService.SubscribeGlobal(context.Background(), limit, func(items []domain.MediaItem) {
			h.hub.Publish(topic, msgFeedSnapshot, items)
		})
		return wrapCancel(cancel), err
	})
}

// Review streams the pending review queue to admins.
func (h *WSHandler) Review(c *gin.Context) {
	topic := realtime.TopicReview

	h.serve(c, topic, func() (func(), error) {
		cancel, err := h.feedService.SubscribePending(context.Background(), func(items []domain.MediaItem) {
			h.hub.Publish(topic, msgReviewSnapshot, items)
		})
		return wrapCancel(cancel), err
	})
}

// UserMedia streams another user's visible gallery.
func (h *WSHandler) UserMedia(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	topic := realtime.TopicUserFeed(targetID.Hex())

	h.serve(c, topic, func() (func(), error) {
		cancel, err := h.feedService.SubscribeUser(context.Background(), targetID, true, func(items []domain.MediaItem) {
			h.hub.Publish(topic, msgMediaSnapshot, items)
		})
		return wrapCancel(cancel), err
	})
}

// Profile opens the signed-in identity's sync session: canonical profile
// plus the owner's full media list, each redelivered in full on change.
func (h *WSHandler) Profile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	topic := realtime.TopicProfile(userID.Hex())

	h.serve(c, topic, func() (func(), error) {
		_, err := h.profileService.StartSession(context.Background(), userID,
			func(p *domain.UserProfile) {
				h.hub.Publish(topic, msgProfileSnapshot, MapUserToResponse(p))
			},
			func(items []domain.MediaItem) {
				h.hub.Publish(topic, msgMediaSnapshot, items)
			},
		)
		if err != nil {
			return nil, err
		}
		return func() { h.profileService.EndSession(userID) }, nil
	})
}

// Agenda streams the signed-in user's fixtures.
func (h *WSHandler) Agenda(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	topic := realtime.TopicAgenda(userID.Hex())

	h.serve(c, topic, func() (func(), error) {
		cancel, err := h.matchService.Subscribe(context.Background(), userID, func(events []domain.MatchEvent) {
			h.hub.Publish(topic, msgAgendaSnapshot, events)
		})
		return wrapCancel(cancel), err
	})
}

func wrapCancel(cancel repository.CancelFunc) func() {
	if cancel == nil {
		return func() {}
	}
	return func() { cancel() }
}
