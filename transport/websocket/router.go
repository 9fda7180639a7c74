package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sketchsync/sketchboard/board/canvas"
)

// Frame types understood by the router.
const (
	FrameJoin           = "join"
	FrameDraw           = "draw"
	FrameClear          = "clear"
	FrameUndo           = "undo"
	FrameHistoryRequest = "history-request"
	FrameHistory        = "history"
)

// drawPayload is the data field of a draw frame. The user id is never
// taken from the wire; the sender's connection identity supplies it.
type drawPayload struct {
	Segment  json.RawMessage `json:"segment"`
	StrokeID string          `json:"strokeId"`
}

// routeFrame parses one inbound frame and dispatches it. Protocol misuse
// (a non-join frame for a session the sender hasn't joined) is dropped
// without a reply; validation failures are logged and dropped. Neither
// closes the connection.
func (h *Hub) routeFrame(client *Client, raw []byte) {
	// The inbound queue is buffered, so a frame can still be waiting after
	// its sender unregistered and its send channel closed. Routing it would
	// re-index the dead client or panic replying to it.
	if !h.clients[client] {
		return
	}

	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("Failed to parse frame from %s: %v", client.userID, err)
		return
	}

	ctx := context.Background()

	switch frame.Type {
	case FrameJoin:
		result, err := h.service.Join(ctx, frame.SessionID)
		if err != nil {
			log.Printf("Join failed for %s: %v", client.userID, err)
			return
		}
		if client.sessionID != "" && client.sessionID != frame.SessionID {
			h.removeFromSession(client)
		}
		client.sessionID = frame.SessionID
		h.addToSession(client)
		h.sendTo(client, OutboundFrame{Type: FrameHistory, Data: historyData(result.History)})

	case FrameDraw:
		if !client.joinedTo(frame.SessionID) {
			return
		}
		var payload drawPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			log.Printf("Failed to parse draw payload from %s: %v", client.userID, err)
			return
		}
		action := canvas.Action{
			Segment:  payload.Segment,
			StrokeID: payload.StrokeID,
			UserID:   client.userID,
		}
		result, err := h.service.RecordStroke(ctx, frame.SessionID, action)
		if err != nil {
			log.Printf("Draw failed for %s in session %s: %v", client.userID, frame.SessionID, err)
			return
		}
		// The sender already has its own stroke; echoing it back would
		// draw it twice.
		h.broadcast(frame.SessionID, OutboundFrame{Type: FrameDraw, Data: result.Action}, client)

	case FrameClear:
		if !client.joinedTo(frame.SessionID) {
			return
		}
		if _, err := h.service.Clear(ctx, frame.SessionID); err != nil {
			log.Printf("Clear failed for %s in session %s: %v", client.userID, frame.SessionID, err)
			return
		}
		h.broadcast(frame.SessionID, OutboundFrame{Type: FrameClear}, client)

	case FrameUndo:
		if !client.joinedTo(frame.SessionID) {
			return
		}
		result, err := h.service.Undo(ctx, frame.SessionID, client.userID)
		if err != nil {
			log.Printf("Undo failed for %s in session %s: %v", client.userID, frame.SessionID, err)
			return
		}
		// Unlike draw, the full history goes to everyone including the
		// sender, whose canvas must redraw without the undone stroke.
		if result.Undone {
			h.broadcast(frame.SessionID, OutboundFrame{Type: FrameHistory, Data: historyData(result.History)}, nil)
		}

	case FrameHistoryRequest:
		if frame.SessionID == "" {
			return
		}
		history, err := h.service.History(ctx, frame.SessionID)
		if err != nil {
			log.Printf("History request failed for %s: %v", client.userID, err)
			return
		}
		h.sendTo(client, OutboundFrame{Type: FrameHistory, Data: historyData(history)})

	default:
		log.Printf("Unhandled frame type %q from %s", frame.Type, client.userID)
	}
}

// historyData keeps an empty history serializing as [] rather than null.
func historyData(history []canvas.Action) []canvas.Action {
	if history == nil {
		return []canvas.Action{}
	}
	return history
}
