package ws

import "encoding/json"

// Request discriminators of the collaboration protocol.
const (
	ReqJoin            = "join"
	ReqGetData         = "getData"
	ReqOp              = "op"
	ReqAddPresences    = "addPresences"
	ReqRemovePresences = "removePresences"
	ReqOpError         = "opError"
)

// DefaultShareCode is the session used when a client sends op or getData
// before joining. Kept for clients that predate share codes.
const DefaultShareCode = "default"

// Message is the envelope of every frame on the collaboration channel.
type Message struct {
	Req       string          `json:"req"`
	ShareCode string          `json:"shareCode,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// reply is the server-to-client frame shape.
type reply struct {
	Req       string      `json:"req"`
	ShareCode string      `json:"shareCode,omitempty"`
	Data      interface{} `json:"data"`
}

// opErrorPayload is the body of an opError reply.
type opErrorPayload struct {
	Message string `json:"message"`
}
