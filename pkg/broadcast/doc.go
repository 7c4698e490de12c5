// Package broadcast provides type-safe fan-out of state snapshots to
// subscribers.
//
// Every broadcast message is treated as a full replacement of the previous
// one. A subscriber that falls behind never sees a backlog: its single-slot
// mailbox is overwritten with the newest message, so a consumer always
// renders the latest state and never a merge of two.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[[]User]()
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[[]User]{Data: users})
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscriptions are cleaned up when:
// - The subscriber's context is cancelled
// - Close is called on the subscriber
// - The broadcaster is closed
package broadcast
