package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/hoanghai1803/driverpro/internal/models"
)

// ErrAlreadySubscribed is returned when a Client already has a subscriber.
var ErrAlreadySubscribed = errors.New("identity client already has a subscriber")

// Client holds the signed-in state of one dashboard session and publishes
// every change to a single subscriber.
type Client struct {
	svc *Service

	mu      sync.Mutex
	current *models.Identity
	sub     chan *models.Identity
}

// NewClient creates a signed-out Client backed by the service.
func (s *Service) NewClient() *Client {
	return &Client{svc: s}
}

// currentUser returns the signed-in identity, or nil.
func (c *Client) currentUser() *models.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe returns a channel that receives the current state right away and
// then every later change (nil means signed out). Only the latest state is
// buffered: a slow reader sees the newest identity, not every intermediate
// one. The returned func unsubscribes and closes the channel.
func (c *Client) Subscribe() (<-chan *models.Identity, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		return nil, nil, ErrAlreadySubscribed
	}

	ch := make(chan *models.Identity, 1)
	c.sub = ch
	c.publishLocked()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.sub == ch {
				c.sub = nil
			}
			close(ch)
		})
	}
	return ch, unsubscribe, nil
}

// SignInAnonymously signs the client in as a new anonymous identity.
func (c *Client) SignInAnonymously(ctx context.Context) (*models.Identity, error) {
	ident, err := c.svc.SignInAnonymously(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ident)
	return ident, nil
}

// SignInWithCustomToken signs the client in as the token's subject.
func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*models.Identity, error) {
	ident, err := c.svc.SignInWithCustomToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.set(ident)
	return ident, nil
}

// signOut clears the signed-in identity.
func (c *Client) signOut() {
	c.set(nil)
}

func (c *Client) set(ident *models.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ident
	c.publishLocked()
}

// publishLocked replaces whatever is buffered with the current state. The
// channel has capacity one and is only written under c.mu, so the send
// never blocks.
func (c *Client) publishLocked() {
	if c.sub == nil {
		return
	}
	select {
	case <-c.sub:
	default:
	}
	c.sub <- c.current
}
