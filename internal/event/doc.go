// Package event provides a pub-sub event bus that decouples the game
// engine from whatever is watching it.
//
// The engine publishes an [EntryAppendedEvent] for every log append and a
// [PhaseChangedEvent] on every transition. The presenter renders from
// these; [InputRequiredEvent] marks the engine pausing for the human seat.
// A game ends with either [GameOverEvent] or [GameFailedEvent].
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine, in subscription order. A
// panicking handler is logged and does not stop delivery to the rest.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeEntryAppended, func(e event.Event) {
//	    appended := e.(event.EntryAppendedEvent)
//	    fmt.Println(appended.Entry.Content)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action": entry.appended,
// phase.changed, input.required, game.over, game.failed.
package event
