package portal

import "context"

// Notifier is told about every committed request. Implementations must not
// block the caller and must swallow their own failures.
type Notifier interface {
	NotifyRequestCreated(ctx context.Context, event RequestCreatedEvent)
}

type noopNotifier struct{}

func (noopNotifier) NotifyRequestCreated(context.Context, RequestCreatedEvent) {}
