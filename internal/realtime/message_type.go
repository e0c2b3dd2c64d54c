package realtime

// EventName identifies an outbound event using a custom enum type for better
// type safety than raw strings.
type EventName string

// Outbound event names delivered to connected transports.
const (
	EventAuthenticated      EventName = "authenticated"
	EventAuthError          EventName = "authentication_error"
	EventUserStatus         EventName = "user_status"
	EventRoomJoined         EventName = "room_joined"
	EventRoomLeft           EventName = "room_left"
	EventUserJoinedRoom     EventName = "user_joined_room"
	EventUserLeftRoom       EventName = "user_left_room"
	EventBidUpdate          EventName = "bid_update"
	EventVoteUpdate         EventName = "vote_update"
	EventNewMeme            EventName = "new_meme"
	EventMemeHighlight      EventName = "meme_highlight"
	EventLeaderboardUpdate  EventName = "leaderboard_update"
	EventNotification       EventName = "notification"
	EventSystemAnnouncement EventName = "system_announcement"
)

// String returns the string representation of the EventName.
func (e EventName) String() string {
	return string(e)
}

// Disconnect reasons attached to lifecycle events and close frames.
const (
	ReasonSuperseded     = "superseded"
	ReasonTransportClose = "transport_closed"
	ReasonLogout         = "logout"
	ReasonServerShutdown = "server_shutdown"
)

// Inbound actions a connected client may send over the socket.
const (
	actionAuthenticate = "authenticate"
	actionHeartbeat    = "heartbeat"
	actionJoinRoom     = "join_room"
	actionLeaveRoom    = "leave_room"
	actionLogout       = "logout"
)

// Payload carries the caller-supplied fields of an outbound event. The
// dispatcher envelopes it with delivery metadata before the wire.
type Payload map[string]interface{}

// inboundMessage is the JSON frame clients send over the socket.
type inboundMessage struct {
	Action   string          `json:"action"`
	Username string          `json:"username,omitempty"`
	Room     string          `json:"room,omitempty"`
	Metadata sessionMetaWire `json:"metadata,omitempty"`
}

// sessionMetaWire is the client-supplied slice of session metadata.
type sessionMetaWire struct {
	ClientVersion string                 `json:"clientVersion,omitempty"`
	Extra         map[string]interface{} `json:"extra,omitempty"`
}
