package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"sheethub/application/collab"
	"sheethub/application/ports"
	"sheethub/domain/workbook"
)

// Relay drives the per-connection message loop: classify each inbound
// frame, apply it through the engine or merge it into the presence
// registry, then fan the raw bytes out to the rest of the session.
//
// Error discipline follows three lanes. Protocol errors (non-JSON frame,
// unknown req) drop the message and keep the connection alive. Applier
// rejections drop the batch, skip the broadcast and answer the sender
// with an opError frame. Presence-path failures are best-effort: they log
// and never block the broadcast.
type Relay struct {
	hub      *Hub
	engine   *collab.Engine
	registry *collab.Registry
	store    ports.DocumentStore
	logger   *zap.Logger
}

// NewRelay creates a relay over the given hub, engine and registry.
func NewRelay(hub *Hub, engine *collab.Engine, registry *collab.Registry, store ports.DocumentStore, logger *zap.Logger) *Relay {
	return &Relay{
		hub:      hub,
		engine:   engine,
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// HandleMessage processes one inbound frame for s. The transport layer
// guarantees frames for one connection arrive sequentially, which gives
// per-connection ordering; cross-connection ordering is whatever the
// engine observes at arrival.
func (r *Relay) HandleMessage(ctx context.Context, s *session, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("dropping malformed frame",
			zap.String("conn", s.client.ID()),
			zap.Error(err),
		)
		return
	}

	switch msg.Req {
	case ReqJoin:
		r.handleJoin(ctx, s, msg)
	case ReqGetData:
		r.handleGetData(ctx, s)
	case ReqOp:
		r.handleOp(ctx, s, msg, raw)
	case ReqAddPresences:
		r.handleAddPresences(s, msg, raw)
	case ReqRemovePresences:
		r.handleRemovePresences(s, msg, raw)
	default:
		r.logger.Warn("dropping frame with unknown req",
			zap.String("conn", s.client.ID()),
			zap.String("req", msg.Req),
		)
	}
}

// handleJoin binds the connection on first join and replies with the full
// session snapshot followed by the current presence list. A join from an
// already-joined connection rebinds nothing, it only re-sends the two
// replies, which is how clients force a full resync after an out-of-band
// import.
func (r *Relay) handleJoin(ctx context.Context, s *session, msg Message) {
	if msg.ShareCode == "" {
		r.logger.Warn("join without shareCode", zap.String("conn", s.client.ID()))
		return
	}
	s.bind(msg.ShareCode)

	code, _ := s.bound()
	r.sendSnapshot(ctx, s, code, true)
}

// handleGetData serves the legacy pre-join resync against the default
// session.
func (r *Relay) handleGetData(ctx context.Context, s *session) {
	r.sendSnapshot(ctx, s, s.boundOrDefault(), false)
}

func (r *Relay) sendSnapshot(ctx context.Context, s *session, shareCode string, echoCode bool) {
	sheets, err := r.store.GetSheets(ctx, shareCode)
	if err != nil {
		// Storage being down must not kill the relay; the client keeps
		// its connection and may re-join.
		r.logger.Error("snapshot load failed",
			zap.String("conn", s.client.ID()),
			zap.String("shareCode", shareCode),
			zap.Error(err),
		)
		return
	}
	workbook.SortSheets(sheets)

	snapshot := reply{Req: ReqGetData, Data: sheets}
	if echoCode {
		snapshot.ShareCode = shareCode
	}
	r.send(s, snapshot)
	r.send(s, reply{Req: ReqAddPresences, Data: r.registry.Presences(shareCode)})
}

// handleOp applies the batch to the bound session and, only on success,
// rebroadcasts the original untouched bytes to the rest of the session.
// A rejected batch is dropped, never persisted and never broadcast; the
// sender gets an explicit opError instead of silence.
func (r *Relay) handleOp(ctx context.Context, s *session, msg Message, raw []byte) {
	shareCode := s.boundOrDefault()

	var ops []workbook.Operation
	if err := json.Unmarshal(msg.Data, &ops); err != nil {
		r.logger.Warn("dropping op with malformed batch",
			zap.String("conn", s.client.ID()),
			zap.Error(err),
		)
		r.send(s, reply{Req: ReqOpError, Data: opErrorPayload{Message: "malformed operation batch"}})
		return
	}

	if err := r.engine.Apply(ctx, shareCode, ops); err != nil {
		r.logger.Warn("operation batch rejected",
			zap.String("conn", s.client.ID()),
			zap.String("shareCode", shareCode),
			zap.Error(err),
		)
		r.send(s, reply{Req: ReqOpError, Data: opErrorPayload{Message: err.Error()}})
		return
	}

	r.hub.broadcast(s.client.ID(), shareCode, raw)
}

// handleAddPresences merges the records into the registry and
// rebroadcasts the raw message. The connection keeps the records so the
// relay can retract them on disconnect.
func (r *Relay) handleAddPresences(s *session, msg Message, raw []byte) {
	var incoming []collab.Presence
	if err := json.Unmarshal(msg.Data, &incoming); err != nil {
		r.logger.Warn("dropping malformed addPresences",
			zap.String("conn", s.client.ID()),
			zap.Error(err),
		)
		return
	}
	shareCode := s.boundOrDefault()

	s.setPresences(incoming)
	r.registry.AddPresences(shareCode, incoming)
	r.hub.broadcast(s.client.ID(), shareCode, raw)
}

// handleRemovePresences removes the records and rebroadcasts the raw
// message. Removing keys that are not present is a no-op, not an error.
func (r *Relay) handleRemovePresences(s *session, msg Message, raw []byte) {
	var removed []collab.Presence
	if err := json.Unmarshal(msg.Data, &removed); err != nil {
		r.logger.Warn("dropping malformed removePresences",
			zap.String("conn", s.client.ID()),
			zap.Error(err),
		)
		return
	}
	shareCode := s.boundOrDefault()

	r.registry.RemovePresences(shareCode, removed)
	r.hub.broadcast(s.client.ID(), shareCode, raw)
}

// HandleClose runs when a connection's socket closes. If the connection
// ever contributed presence, the relay synthesizes a removePresences for
// exactly those records and broadcasts it to the remaining members before
// erasing the connection's registry entries.
func (r *Relay) HandleClose(s *session) {
	shareCode := s.boundOrDefault()

	if contributed := s.contributed(); len(contributed) > 0 {
		r.registry.RemovePresences(shareCode, contributed)
		if payload, err := json.Marshal(reply{Req: ReqRemovePresences, Data: contributed}); err == nil {
			r.hub.broadcast(s.client.ID(), shareCode, payload)
		}
	}

	s.close()
	r.hub.remove(s.client.ID())
}

func (r *Relay) send(s *session, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		r.logger.Error("failed to encode reply", zap.Error(err))
		return
	}
	if err := s.client.Send(payload); err != nil {
		r.logger.Warn("reply send failed",
			zap.String("conn", s.client.ID()),
			zap.Error(err),
		)
	}
}
