package broker

import (
	"context"
)

type publishChannelContent[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

type subscribeChannelContent[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan chan TPayload
}

// ChannelBroker passes a channel with ID from producer to the first consumer.
// The subsequent consumers will block until the producer unpublishes so that they
// can resolve the situation e.g. by reading the persisted terminal state.
//
// Transcription jobs use it to stream progress events through SSE. The producer is
// the worker processing the job, the first consumer is the HTTP handler returning the
// SSE stream. Subsequent consumers are likely reconnects or duplicate tabs.
type ChannelBroker[TID comparable, TPayload any] struct {
	stopChannel      chan struct{}
	publishChannel   chan publishChannelContent[TID, TPayload]
	unpublishChannel chan TID
	subscribeChannel chan subscribeChannelContent[TID, TPayload]
}

// NewChannelBroker creates a new ChannelBroker. Start it in a goroutine and use Stop() to stop it.
func NewChannelBroker[TID comparable, TPayload any]() *ChannelBroker[TID, TPayload] {
	broker := ChannelBroker[TID, TPayload]{
		stopChannel:      make(chan struct{}),
		publishChannel:   make(chan publishChannelContent[TID, TPayload]),
		unpublishChannel: make(chan TID),
		subscribeChannel: make(chan subscribeChannelContent[TID, TPayload]),
	}
	return &broker
}

// Start listening for publish, unpublish, and subscribe events. This function blocks until Stop() is called,
// so it should be called in a goroutine.
func (b *ChannelBroker[TID, TPayload]) Start() {
	publishedChannels := map[TID]chan TPayload{}
	subscriberLists := map[TID][]chan chan TPayload{}
	for {
		select {
		case <-b.stopChannel:
			for _, subscribers := range subscriberLists {
				closeAll(subscribers)
			}
			return

		case subscription := <-b.subscribeChannel:
			c := publishedChannels[subscription.ID]
			if c == nil {
				// Signal to the subscriber that the producer is finished (or hasn't started yet).
				close(subscription.Channel)
				break
			}
			subscribers, claimed := subscriberLists[subscription.ID]
			if !claimed {
				// First subscriber gets the channel from the producer.
				subscriberLists[subscription.ID] = nil
				subscription.Channel <- c
			} else {
				// Subsequent subscribers block until the producer is finished.
				subscriberLists[subscription.ID] = append(subscribers, subscription.Channel)
			}

		case publication := <-b.publishChannel:
			publishedChannels[publication.ID] = publication.Channel

		case id := <-b.unpublishChannel:
			closeAll(subscriberLists[id])
			delete(publishedChannels, id)
			delete(subscriberLists, id)
		}
	}
}

func closeAll[TPayload any](subscribers []chan chan TPayload) {
	for _, s := range subscribers {
		close(s)
	}
}

// Stop the goroutine that handles the broker. Waiting subscribers are released.
func (b *ChannelBroker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe to the channel with ID. Returns a channel that will receive the channel corresponding to the ID.
// If the channel is not yet published, the returned channel will be closed.
// If there's already a subscriber, the returned channel will block until the producer unpublishes and then
// close the returned channel.
func (b *ChannelBroker[TID, TPayload]) Subscribe(id TID) chan chan TPayload {
	channel := make(chan chan TPayload, 1)
	select {
	case b.subscribeChannel <- subscribeChannelContent[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}:
	case <-b.stopChannel:
		close(channel)
	}
	return channel
}

// Await subscribes to ID and waits for the producer channel. ok is false when there is nothing to consume, either
// because the producer is finished or another consumer got the channel first.
func (b *ChannelBroker[TID, TPayload]) Await(ctx context.Context, id TID) (chan TPayload, bool, error) {
	select {
	case c, ok := <-b.Subscribe(id):
		return c, ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err() //nolint:wrapcheck // callers check for context errors
	}
}

// Publish the channel with ID. The channel will be sent to the first subscriber.
func (b *ChannelBroker[TID, TPayload]) Publish(id TID, channel chan TPayload) {
	select {
	case b.publishChannel <- publishChannelContent[TID, TPayload]{
		ID:      id,
		Channel: channel,
	}:
	case <-b.stopChannel:
	}
}

// Unpublish the channel with ID and release the subscribers waiting behind the first one. The producer should close
// its channel before unpublishing so that the first subscriber sees the end of the stream.
func (b *ChannelBroker[TID, TPayload]) Unpublish(id TID) {
	select {
	case b.unpublishChannel <- id:
	case <-b.stopChannel:
	}
}
