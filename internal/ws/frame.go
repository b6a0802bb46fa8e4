package ws

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/store"
)

// 线上帧类型，入站只接受 chatMessage，其余均为出站。
const (
	FrameChatMessage = "chatMessage"
	FrameHistory     = "history"
	FrameNewMessage  = "newMessage"
	FrameError       = "error"
)

var (
	ErrMalformedFrame = errors.New("invalid message format (not JSON)")
	ErrUnknownFrame   = errors.New("unhandled message type or format")
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type chatPayload struct {
	Text string `json:"text"`
}

// decodeInbound 解析入站帧并返回去除首尾空白后的文本。
// 空文本不是错误：调用方应当静默丢弃。
func decodeInbound(data []byte) (text string, err error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return "", ErrMalformedFrame
	}
	switch f.Type {
	case FrameChatMessage:
		var p chatPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.Text == "" {
			return "", ErrUnknownFrame
		}
		return strings.TrimSpace(p.Text), nil
	default:
		return "", ErrUnknownFrame
	}
}

func encodeFrame(typ string, payload interface{}) []byte {
	b, err := json.Marshal(map[string]interface{}{"type": typ, "payload": payload})
	if err != nil {
		return nil
	}
	return b
}

func historyFrame(msgs []store.MessageDTO) []byte {
	if msgs == nil {
		msgs = []store.MessageDTO{}
	}
	return encodeFrame(FrameHistory, msgs)
}

func newMessageFrame(msg store.MessageDTO) []byte {
	return encodeFrame(FrameNewMessage, msg)
}

func errorFrame(reason string) []byte {
	return encodeFrame(FrameError, reason)
}
