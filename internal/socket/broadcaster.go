// internal/socket/broadcaster.go
package socket

// Broadcaster provides high-level methods for broadcasting portal events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Approval Broadcasting
// ============================================

// BroadcastApprovalSubmitted notifies the admin review room of a new
// pending request
func (b *Broadcaster) BroadcastApprovalSubmitted(request map[string]interface{}) {
	b.hub.SendToRoom(RoomApprovals, MessageApprovalSubmitted, request, "")
}

// BroadcastApprovalDecided notifies everyone of a decided request; the
// requester's dashboard picks it up from their personal room too
func (b *Broadcaster) BroadcastApprovalDecided(request map[string]interface{}) {
	b.hub.Broadcast(MessageApprovalDecided, request)
}

// SendApprovalCount pushes the pending-queue size to a specific admin
func (b *Broadcaster) SendApprovalCount(userID string, pending int) {
	b.hub.SendToUser(userID, MessageApprovalCount, map[string]interface{}{
		"pending": pending,
	})
}

// ============================================
// Team and Planning Broadcasting
// ============================================

// BroadcastTeamChanged broadcasts a team create/update to all clients
func (b *Broadcaster) BroadcastTeamChanged(team map[string]interface{}) {
	b.hub.Broadcast(MessageTeamChanged, team)
}

// BroadcastPlanningChanged broadcasts a planning change to all clients
func (b *Broadcaster) BroadcastPlanningChanged(session map[string]interface{}) {
	b.hub.Broadcast(MessagePlanningChanged, session)
}
