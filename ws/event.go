// Package ws pushes forum events to connected browsers over WebSocket.
//
// Every frame is a JSON Event: {"op": "...", "d": {...}, "seq": n}.
package ws

// Event is the envelope of every frame in both directions. Seq grows by
// one for each server broadcast so clients can spot gaps.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client to server.
const (
	OpHeartbeat = "heartbeat"
)

// Server to client.
const (
	OpReady               = "ready"
	OpHeartbeatAck        = "heartbeat_ack"
	OpPresence            = "presence_update"
	OpForumMessageCreate  = "forum_message_create"
	OpForumMessageApprove = "forum_message_approve"
)

// ReadyData is sent once right after the connection is accepted.
type ReadyData struct {
	UserID        int64   `json:"user_id"`
	OnlineUserIDs []int64 `json:"online_user_ids"`
}

// PresenceData announces a member going online or offline.
type PresenceData struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// ForumMessageData accompanies forum_message_create and
// forum_message_approve. Clients compare TopicID and ParentID with the
// view they show to decide whether to refresh.
type ForumMessageData struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	TopicID  int64  `json:"topic_id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title,omitempty"`
}
