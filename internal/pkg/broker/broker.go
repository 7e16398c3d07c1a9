package broker

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// ErrUnknownClient is returned when a direct notification targets a connection
// that is not registered
var ErrUnknownClient = errors.New("client not registered")

// Subscriber is a connection the broker can push payloads to. Deliver must not
// block; a slow or closed subscriber reports an error instead.
type Subscriber interface {
	ID() string
	Deliver(payload []byte) error
}

// Stats is a point-in-time view of the registry
type Stats struct {
	Clients       int `json:"clients"`
	Channels      int `json:"channels"`
	Subscriptions int `json:"subscriptions"`
}

// Broker maps channel names to their subscribers. One lock guards the whole
// registry; deliveries happen outside it on a snapshot.
type Broker struct {
	mu          sync.RWMutex
	clients     map[string]Subscriber
	channels    map[string]map[string]Subscriber
	memberships map[string]map[string]struct{}
}

// New creates an empty broker
func New() *Broker {
	return &Broker{
		clients:     make(map[string]Subscriber),
		channels:    make(map[string]map[string]Subscriber),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Register makes sub reachable through NotifyClient
func (b *Broker) Register(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[sub.ID()] = sub
}

// Join adds sub to channel. Joining twice is a no-op.
func (b *Broker) Join(channel string, sub Subscriber) {
	id := sub.ID()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[id]; !ok {
		b.clients[id] = sub
	}

	subs, ok := b.channels[channel]
	if !ok {
		subs = make(map[string]Subscriber)
		b.channels[channel] = subs
	}
	subs[id] = sub

	joined, ok := b.memberships[id]
	if !ok {
		joined = make(map[string]struct{})
		b.memberships[id] = joined
	}
	joined[channel] = struct{}{}
}

// Leave removes connection id from channel. Leaving a channel the connection
// is not in is a no-op.
func (b *Broker) Leave(channel, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(channel, id)
}

// LeaveAll drops every membership of id and unregisters it
func (b *Broker) LeaveAll(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for channel := range b.memberships[id] {
		b.removeLocked(channel, id)
	}
	delete(b.memberships, id)
	delete(b.clients, id)
}

func (b *Broker) removeLocked(channel, id string) {
	if subs, ok := b.channels[channel]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.channels, channel)
		}
	}
	if joined, ok := b.memberships[id]; ok {
		delete(joined, channel)
		if len(joined) == 0 {
			delete(b.memberships, id)
		}
	}
}

// Publish delivers payload to the subscribers of channel at the time of the
// call and returns how many accepted it
func (b *Broker) Publish(channel string, payload []byte) int {
	return b.Fanout([]string{channel}, payload)
}

// Fanout delivers payload once to every subscriber of any of channels,
// skipping the ids in exclude
func (b *Broker) Fanout(channels []string, payload []byte, exclude ...string) int {
	if len(channels) == 0 {
		return 0
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	b.mu.RLock()
	targets := make([]Subscriber, 0)
	for _, channel := range channels {
		for id, sub := range b.channels[channel] {
			if _, seen := skip[id]; seen {
				continue
			}
			skip[id] = struct{}{}
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Deliver(payload); err != nil {
			logger.Warn("Failed to deliver to subscriber",
				logger.String("conn_id", sub.ID()),
				logger.Strings("channels", channels),
				logger.Err(err))
			continue
		}
		delivered++
	}
	return delivered
}

// NotifyClient delivers payload to one registered connection only
func (b *Broker) NotifyClient(id string, payload []byte) error {
	b.mu.RLock()
	sub, ok := b.clients[id]
	b.mu.RUnlock()
	if !ok {
		return ErrUnknownClient
	}
	return sub.Deliver(payload)
}

// PublishError sends an error payload to the originating connection only
func (b *Broker) PublishError(id string, appErr *apperror.Error) error {
	payload, err := json.Marshal(models.WSErrorMessage{Error: appErr.Code, Message: appErr.Message})
	if err != nil {
		return err
	}
	return b.NotifyClient(id, payload)
}

// Subscribers lists the connection ids in channel, sorted
func (b *Broker) Subscribers(channel string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.channels[channel]))
	for id := range b.channels[channel] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChannelsOf lists the channels id has joined, sorted
func (b *Broker) ChannelsOf(id string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	channels := make([]string, 0, len(b.memberships[id]))
	for channel := range b.memberships[id] {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

// Stats reports registry sizes
func (b *Broker) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{Clients: len(b.clients), Channels: len(b.channels)}
	for _, subs := range b.channels {
		s.Subscriptions += len(subs)
	}
	return s
}
