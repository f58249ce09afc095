// Package events provides NATS JetStream publishing for low-stock alerts.
// Publishing is fire-and-forget: a delivery failure is logged and never
// rolls back the inventory mutation that triggered it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"stocker/internal/models"
)

const (
	streamName       = "INVENTORY"
	subjectLowStock  = "inventory.low_stock"
	subjectWildcard  = "inventory.>"
	publishTimeout   = 5 * time.Second
)

// LowStockAlert is the payload published when a product's stock status
// transitions to almost_done or out_of_stock
type LowStockAlert struct {
	ProductID    string             `json:"productId"`
	SKU          string             `json:"sku"`
	Name         string             `json:"name"`
	Quantity     int                `json:"quantity"`
	ReorderLevel int                `json:"reorderLevel"`
	StockStatus  models.StockStatus `json:"stockStatus"`
	Message      string             `json:"message"`
	OccurredAt   time.Time          `json:"occurredAt"`
}

// AlertPublisher publishes inventory alerts to NATS JetStream
type AlertPublisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewAlertPublisher connects to NATS and ensures the inventory stream exists
func NewAlertPublisher(natsURL string, logger *logrus.Logger) (*AlertPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("stocker-alert-publisher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectWildcard},
		}); err != nil {
			log.WithError(err).Warn("failed to ensure inventory stream exists")
		}
	}

	return &AlertPublisher{
		conn:   conn,
		js:     js,
		logger: log.WithField("component", "inventory-events"),
	}, nil
}

// PublishLowStock publishes an inventory.low_stock event for the product.
// Errors are returned for logging only; callers must not fail the mutation.
func (p *AlertPublisher) PublishLowStock(ctx context.Context, product *models.Product) error {
	alert := LowStockAlert{
		ProductID:    product.ID.String(),
		SKU:          product.SKU,
		Name:         product.Name,
		Quantity:     product.Quantity,
		ReorderLevel: product.ReorderLevel,
		StockStatus:  product.StockStatus,
		Message: fmt.Sprintf("Low stock alert: %s (SKU: %s) has %d units remaining (reorder level: %d)",
			product.Name, product.SKU, product.Quantity, product.ReorderLevel),
		OccurredAt: time.Now(),
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if _, err := p.js.Publish(subjectLowStock, data, nats.Context(ctx)); err != nil {
		p.logger.WithError(err).WithField("sku", product.SKU).Warn("failed to publish low stock alert")
		return err
	}

	p.logger.WithField("sku", product.SKU).Debug("published low stock alert")
	return nil
}

// Close drains the NATS connection
func (p *AlertPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
