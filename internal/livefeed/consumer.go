package livefeed

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"auction-live/pkg/models"
	"auction-live/pkg/rabbitmq"
)

const eventsExchange = "marketplace_events"

// Consumer bridges the marketplace broker to the hub: each event queue is
// decoded just far enough to pick the push group, then forwarded untouched.
type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	hub  *Hub
	log  zerolog.Logger
}

func NewConsumer(url string, hub *Hub, log zerolog.Logger) (*Consumer, error) {
	conn, ch, err := rabbitmq.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, hub: hub, log: log}, nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Consumer) setupQueues() error {
	if err := rabbitmq.DeclareExchange(c.ch, eventsExchange, "topic"); err != nil {
		return err
	}
	bindings := map[string]string{
		"bid_placed":             "bid.placed",
		"auction_status_updated": "auction.status.updated",
		"message_received":       "message.received",
	}
	for queue, key := range bindings {
		if _, err := rabbitmq.DeclareQueue(c.ch, queue); err != nil {
			return err
		}
		if err := rabbitmq.BindQueueToExchange(c.ch, queue, key, eventsExchange); err != nil {
			return err
		}
		c.log.Info().Str("queue", queue).Str("key", key).Msg("queue bound")
	}
	return nil
}

// ConsumeQueues starts one consumer goroutine per event queue.
func (c *Consumer) ConsumeQueues() error {
	if err := c.setupQueues(); err != nil {
		return err
	}
	handlers := map[string]func(amqp.Delivery){
		"bid_placed":             c.handleBidPlaced,
		"auction_status_updated": c.handleStatusUpdated,
		"message_received":       c.handleMessageReceived,
	}
	for queue, handler := range handlers {
		if err := c.consumeQueue(queue, handler); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) consumeQueue(queue string, handler func(amqp.Delivery)) error {
	if err := c.ch.Qos(1, 0, false); err != nil {
		return err
	}
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			handler(msg)
		}
	}()
	c.log.Info().Str("queue", queue).Msg("consuming")
	return nil
}

func (c *Consumer) handleBidPlaced(msg amqp.Delivery) {
	var ev models.BidPlaced
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		c.log.Error().Err(err).Msg("bad bid_placed payload")
		msg.Nack(false, false)
		return
	}
	c.hub.Publish(Event{
		Type:      models.EventBidPlaced,
		Group:     AuctionGroup(ev.AuctionID),
		Timestamp: ev.PlacedBid.BidTime,
		Data:      json.RawMessage(msg.Body),
	})
	msg.Ack(false)
}

func (c *Consumer) handleStatusUpdated(msg amqp.Delivery) {
	var ev models.AuctionStatusUpdated
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		c.log.Error().Err(err).Msg("bad auction_status_updated payload")
		msg.Nack(false, false)
		return
	}
	c.hub.Publish(Event{
		Type:      models.EventAuctionStatus,
		Group:     AuctionGroup(ev.AuctionID),
		Timestamp: ev.Timestamp,
		Data:      json.RawMessage(msg.Body),
	})
	msg.Ack(false)
}

func (c *Consumer) handleMessageReceived(msg amqp.Delivery) {
	var ev models.MessageReceived
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		c.log.Error().Err(err).Msg("bad message_received payload")
		msg.Nack(false, false)
		return
	}
	c.hub.Publish(Event{
		Type:      models.EventMessageReceived,
		Group:     UserGroup(ev.ReceiverID),
		Timestamp: ev.SentAt,
		Data:      json.RawMessage(msg.Body),
	})
	msg.Ack(false)
}
