package ui

import "github.com/streamchat-io/streamchat/internal/chat"

// snapshotMsg carries one published state of the in-flight assistant
// message.
type snapshotMsg struct {
	update chat.Update
}

// updatesClosedMsg indicates the update channel drained; the exchange
// result follows in exchangeDoneMsg.
type updatesClosedMsg struct{}

// exchangeDoneMsg indicates the full question-answer exchange is done.
type exchangeDoneMsg struct {
	err error
}
