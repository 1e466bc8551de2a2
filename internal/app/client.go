package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/api"
	"github.com/vovakirdan/chatsync/internal/config"
	"github.com/vovakirdan/chatsync/internal/core"
	"github.com/vovakirdan/chatsync/internal/transport/ws"
)

// Client wires the synchronization engine: one API client, one real-time
// connection owned by the session, and the services built on top of them.
type Client struct {
	API          *api.Client
	Presence     *core.PresenceTracker
	Session      *core.SessionManager
	Router       *core.MessageRouter
	Conversation *core.ConversationContext
	Directory    *core.Directory
	Groups       *core.GroupEditor

	unsubscribe []func()
	log         *zerolog.Logger
}

// NewClient builds a client from cfg. A nil notify logs notifications.
func NewClient(cfg config.Config, notify core.Notifier, logger *zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &core.ConfigurationError{Err: err}
	}
	if notify == nil {
		notify = core.NewLogNotifier(logger)
	}

	apiClient, err := api.New(cfg.APIURL, cfg.RequestTimeout, logger)
	if err != nil {
		return nil, &core.ConfigurationError{Err: fmt.Errorf("api client: %w", err)}
	}

	dial := func(endpoint, userID string) (core.Conn, error) {
		conn, err := ws.New(endpoint, userID, ws.Options{
			Attempts:    cfg.ReconnectAttempts,
			Delay:       cfg.ReconnectDelay,
			DialTimeout: cfg.RequestTimeout,
			HTTPClient:  apiClient.HTTPClient(),
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	presence := core.NewPresenceTracker(logger)
	session := core.NewSessionManager(apiClient, dial, cfg.ResolveSocketURL, presence, notify, logger)
	router := core.NewMessageRouter(session, apiClient, notify, cfg.DedupeMessages, logger)
	conv := core.NewConversationContext(router, apiClient, notify, cfg.DiscardStaleHistory, logger)
	directory := core.NewDirectory(apiClient, conv, notify, logger)
	groups := core.NewGroupEditor(apiClient, session, directory, notify, cfg.GroupCap, logger)

	c := &Client{
		API:          apiClient,
		Presence:     presence,
		Session:      session,
		Router:       router,
		Conversation: conv,
		Directory:    directory,
		Groups:       groups,
		log:          logger,
	}
	// A reconnected session hands out a new connection; the router follows it.
	c.unsubscribe = append(c.unsubscribe, session.OnConnection(func(core.Conn) {
		router.Rebind()
	}))
	return c, nil
}

// Resume restores a session from the cookie jar, if the server still
// accepts it, and connects.
func (c *Client) Resume(ctx context.Context) bool {
	_, err := c.Session.CheckAuth(ctx)
	return err == nil
}

// Logout ends the session and drops the selected conversation.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Session.Logout(ctx); err != nil {
		return err
	}
	c.Conversation.Clear()
	return nil
}

// Close releases subscriptions and the real-time connection.
func (c *Client) Close() {
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil
	c.Conversation.Clear()
	c.Session.Disconnect()
}
