package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

type fakeSubscriber struct {
	handlers map[string]func(context.Context, *message.Message) error
	errChs   map[string]chan error
	failOn   string
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers: map[string]func(context.Context, *message.Message) error{},
		errChs:   map[string]chan error{},
	}
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topic string, h func(context.Context, *message.Message) error) (<-chan error, error) {
	if topic == f.failOn {
		return nil, errors.New("subscribe refused")
	}
	ch := make(chan error, 1)
	f.handlers[topic] = h
	f.errChs[topic] = ch
	return ch, nil
}

type stockEvent struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func TestSubscribeAll_RegistersEveryRoute(t *testing.T) {
	sub := newFakeSubscriber()
	var got []stockEvent
	routes := []Route{
		{Topic: "catalog.product_changed", Handler: JSON(func(_ context.Context, e stockEvent) error {
			got = append(got, e)
			return nil
		})},
		{Topic: "notify.email", Handler: func(context.Context, *message.Message) error { return nil }},
	}

	topics, err := SubscribeAll(context.Background(), sub, nopLogger(), routes...)
	if err != nil {
		t.Fatalf("SubscribeAll: %v", err)
	}
	if len(topics) != 2 || topics[0] != "catalog.product_changed" || topics[1] != "notify.email" {
		t.Fatalf("topics = %v", topics)
	}

	msg := message.NewMessage("1", []byte(`{"product_id":"p-1","quantity":4}`))
	if err := sub.handlers["catalog.product_changed"](context.Background(), msg); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "p-1" || got[0].Quantity != 4 {
		t.Errorf("decoded = %+v", got)
	}

	// Errors reported on the channel are drained, so sends never block.
	for _, ch := range sub.errChs {
		ch <- errors.New("boom")
		select {
		case ch <- errors.New("boom again"):
		case <-time.After(time.Second):
			t.Fatal("error channel was not drained")
		}
		close(ch)
	}
}

func TestSubscribeAll_StopsOnRegistrationError(t *testing.T) {
	sub := newFakeSubscriber()
	sub.failOn = "notify.email"
	nop := func(context.Context, *message.Message) error { return nil }

	topics, err := SubscribeAll(context.Background(), sub, nopLogger(),
		Route{Topic: "catalog.product_changed", Handler: nop},
		Route{Topic: "notify.email", Handler: nop},
		Route{Topic: "never.reached", Handler: nop},
	)
	if err == nil {
		t.Fatal("expected registration error")
	}
	if len(topics) != 1 || topics[0] != "catalog.product_changed" {
		t.Errorf("topics = %v", topics)
	}
	if _, ok := sub.handlers["never.reached"]; ok {
		t.Error("routes after the failure must not be registered")
	}
	close(sub.errChs["catalog.product_changed"])
}

func TestJSON_UndecodablePayloadIsPermanent(t *testing.T) {
	called := false
	h := JSON(func(context.Context, stockEvent) error {
		called = true
		return nil
	})

	err := h(context.Background(), message.NewMessage("1", []byte(`{"quantity":"lots"}`)))
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
	if called {
		t.Error("handler must not run on a bad payload")
	}
}

func TestJSON_HandlerErrorIsRetryable(t *testing.T) {
	h := JSON(func(context.Context, stockEvent) error {
		return errors.New("redis unavailable")
	})

	err := h(context.Background(), message.NewMessage("1", []byte(`{"product_id":"p"}`)))
	if err == nil || errors.Is(err, ErrPermanent) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}
