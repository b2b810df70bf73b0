package worker

import (
	"context"

	"github.com/spec-kit/ticket-routing/internal/service"
)

// StartRoutingWorkers subscribes the routing service to ticket
// creation events and launches its worker pool. Each worker processes
// one trigger at a time; passes for different tickets run concurrently
// up to the pool size.
func StartRoutingWorkers(ctx context.Context, routingService *service.RoutingService, count int) {
	if routingService == nil {
		return
	}
	routingService.RegisterHandlers()
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		go routingService.Run(ctx)
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
