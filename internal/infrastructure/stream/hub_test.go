package stream

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

func newTestHub() *Hub {
	return NewHub(nil, logging.New(logging.DefaultConfig("test")))
}

func TestHubPublishReachesSubscribers(t *testing.T) {
	hub := newTestHub()

	first, unsubFirst := hub.Subscribe("inventory")
	second, unsubSecond := hub.Subscribe("inventory")
	defer unsubFirst()
	defer unsubSecond()

	assert.Equal(t, 2, hub.SubscriberCount("inventory"))

	hub.Publish(context.Background(), "inventory", []byte("payload"))

	assert.Equal(t, []byte("payload"), <-first)
	assert.Equal(t, []byte("payload"), <-second)
}

func TestHubTopicsAreIsolated(t *testing.T) {
	hub := newTestHub()

	ch, unsub := hub.Subscribe("inventory")
	defer unsub()

	hub.Publish(context.Background(), "other", []byte("payload"))

	select {
	case payload := <-ch:
		t.Fatalf("unexpected payload on inventory topic: %q", payload)
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := newTestHub()

	ch, unsub := hub.Subscribe("inventory")
	unsub()

	assert.Zero(t, hub.SubscriberCount("inventory"))

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless
	unsub()
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := newTestHub()

	ch, unsub := hub.Subscribe("inventory")
	defer unsub()

	// Overfill the subscriber buffer; Publish must not block
	for i := 0; i < subscriberBuffer+4; i++ {
		hub.Publish(context.Background(), "inventory", []byte("payload"))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestInventoryStreamPublishesSnapshot(t *testing.T) {
	hub := newTestHub()
	stream := NewInventoryStream(hub, logging.New(logging.DefaultConfig("test")))

	ch, unsub := hub.Subscribe(TopicInventory)
	defer unsub()

	item, err := domain.NewInventoryItem("Omena", "", "fish", 2000, 0, domain.PackagingStructure{
		{Unit: "case", Stock: 10, SellingPrice: 3000},
	})
	require.NoError(t, err)

	stream.PublishInventorySnapshot(context.Background(), []*domain.InventoryItem{item})

	payload := <-ch
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Omena", decoded[0]["productName"])
}
