// Package live maintains the ephemeral subscription rooms and fans change
// events out to their members. Rooms are keyed by disaster id, exist only
// while they have members and deliver at-most-once.
package live

import (
	"context"
	"sync"

	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/google/uuid"
)

// Per-connection buffer. A member that cannot drain its channel in time
// loses events instead of blocking the publishing request path.
const connectionBufferSize = 8

// RoomChannels contains all structures that handle subscription rooms. All
// internal state should not be handled directly by hand but managed by its
// public receivers.
type RoomChannels struct {
	// roomMap maps from disaster id to the room's active member channels,
	// keyed by connection id (uuid) so that deletion of a member is O(1).
	// Each roomMap entry is deleted once the room's last member leaves.
	roomMap map[string]map[string]chan *Event

	// Adding/Removing a membership must grab WriteLock, while all other
	// usage (e.g. publishing an Event) should grab a ReadLock. Ideally we
	// could lock per-room but a shared lock is enough at this scale.
	mu sync.RWMutex
}

func NewRoomChannels() *RoomChannels {
	return &RoomChannels{
		roomMap: make(map[string]map[string]chan *Event),
		mu:      sync.RWMutex{},
	}
}

// cleanUp a single membership when the context terminates. If the room has
// no member left, clean up the room's top-level entry as well.
func (rc *RoomChannels) cleanUp(ctx context.Context, connID string, disasterID string) {
	<-ctx.Done()
	rc.Leave(connID, disasterID)
}

// Join adds a membership to the disaster's room and returns the channel the
// member should drain plus its connection id. The membership is removed
// automatically when ctx terminates.
// Thread-safe
func (rc *RoomChannels) Join(ctx context.Context, disasterID string) (chan *Event, string) {
	connID := "room_conn_" + uuid.New().String()
	ch := make(chan *Event, connectionBufferSize)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.roomMap[disasterID]; !ok {
		rc.roomMap[disasterID] = make(map[string]chan *Event)
	}
	rc.roomMap[disasterID][connID] = ch

	// Spin up a background garbage collector.
	go rc.cleanUp(ctx, connID, disasterID)

	return ch, connID
}

// Leave removes a membership, dropping the room entirely when it empties.
// Leaving twice is a no-op.
// Thread-safe
func (rc *RoomChannels) Leave(connID string, disasterID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	delete(rc.roomMap[disasterID], connID)
	if len(rc.roomMap[disasterID]) == 0 {
		delete(rc.roomMap, disasterID)
	}
}

// Publish delivers the event to every current member of the disaster's
// room. Delivery never blocks: a member with a full buffer misses the
// event.
// Thread-safe
func (rc *RoomChannels) Publish(disasterID string, event *Event) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	for connID, ch := range rc.roomMap[disasterID] {
		select {
		case ch <- event:
		default:
			Logger.Log.Warnf("dropping %s event for slow subscriber %s", event.Kind, connID)
		}
	}
}

// Broadcast delivers the event to every member of every room, used for
// global events such as disaster record changes.
// Thread-safe
func (rc *RoomChannels) Broadcast(event *Event) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	for _, room := range rc.roomMap {
		for connID, ch := range room {
			select {
			case ch <- event:
			default:
				Logger.Log.Warnf("dropping %s event for slow subscriber %s", event.Kind, connID)
			}
		}
	}
}

// GetActiveConnectionsCount returns the number of live memberships.
// Thread-safe
func (rc *RoomChannels) GetActiveConnectionsCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	count := 0
	for _, room := range rc.roomMap {
		count += len(room)
	}
	return count
}
