// Package video starts calls on an external video provider.  The service
// only needs a joinable room link; media transport is the provider's job.
package video

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidParticipants = errors.New("video call needs two distinct participants")

// Call describes a started call.
type Call struct {
	Room      string    `json:"room"`
	URL       string    `json:"url"`
	Host      string    `json:"host"`
	Guest     string    `json:"guest"`
	StartedAt time.Time `json:"started_at"`
}

// Provider starts a call between host and guest.
type Provider interface {
	StartCall(ctx context.Context, host, guest string) (Call, error)
}

// RoomProvider issues unique room names under a base URL, the way hosted
// meeting services accept ad-hoc rooms.
type RoomProvider struct {
	base *url.URL
	now  func() time.Time
}

func NewRoomProvider(baseURL string) (*RoomProvider, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("video base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("video base url: unsupported scheme %q", u.Scheme)
	}
	return &RoomProvider{base: u, now: time.Now}, nil
}

func (p *RoomProvider) StartCall(ctx context.Context, host, guest string) (Call, error) {
	if err := ctx.Err(); err != nil {
		return Call{}, err
	}
	if host == "" || guest == "" || host == guest {
		return Call{}, ErrInvalidParticipants
	}
	room, err := roomName()
	if err != nil {
		return Call{}, err
	}
	u := *p.base
	u.Path = u.Path + "/" + room
	return Call{Room: room, URL: u.String(), Host: host, Guest: guest, StartedAt: p.now().UTC()}, nil
}

func roomName() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("room name: %w", err)
	}
	return "th-" + hex.EncodeToString(b), nil
}
