package bridge

import (
	"context"
	"log"
	"path/filepath"
	"strconv"
)

// forwardOutbound builds the outbound for relaying one inbound message to
// target as text fwd. When the inbound carries an attachment it is
// downloaded first so the forward travels as a fresh upload; the dispatcher
// removes the copy after sending. bind, when nonzero, is the client id the
// sent message should be bound to for reply resolution. lost reports a
// download failure, in which case the text still goes through without the
// file.
func forwardOutbound(ctx context.Context, a Adapter, msg InboundMessage, mediaDir string, target, bind int64, fwd string) (out Outbound, lost bool) {
	out = Outbound{ChatID: target, Text: fwd, BindClient: bind}
	if msg.Attachment != nil {
		dir := filepath.Join(mediaDir, strconv.FormatInt(msg.ChatID, 10))
		path, err := a.Download(ctx, *msg.Attachment, dir)
		if err != nil {
			log.Printf("bridge: download attachment from %d: %v", msg.ChatID, err)
			lost = true
		} else {
			out.FilePath = path
			out.DeleteFile = true
		}
	}
	return out, lost
}
