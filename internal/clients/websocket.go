package clients

import (
	"context"
	"fmt"

	ws "github.com/Sant0sss/jpr-iphone-stock/internal/transport/websocket"
)

// WebSocketClient turns export lifecycle events into hub messages addressed
// to one seller.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) send(sellerID int64, kind, channel string, data map[string]any) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(sellerID, &ws.Message{
		Type:    kind,
		Channel: fmt.Sprintf("%s#%d", channel, sellerID),
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, sellerID int64, exportID string, progress float64, stage string) error {
	data := map[string]any{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}
	return c.send(sellerID, "export_progress", "quotes_export_progress", data)
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, sellerID int64, exportID string, url string, filename string) error {
	return c.send(sellerID, "export_complete", "quotes_export_complete", map[string]any{
		"id":        exportID,
		"url":       url,
		"filename":  filename,
		"seller_id": sellerID,
	})
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, sellerID int64, exportID string, errMsg string) error {
	return c.send(sellerID, "export_failed", "quotes_export_failed", map[string]any{
		"id":        exportID,
		"message":   errMsg,
		"seller_id": sellerID,
	})
}
