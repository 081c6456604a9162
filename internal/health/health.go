// Package health tracks whether receipt notifications can be delivered and
// publishes it on both the HTTP /health body and the gRPC health service.
package health

import (
	"sync/atomic"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NotificationsService is the gRPC health service name for email delivery.
const NotificationsService = "receipts.Notifications"

// Reporter records the notification capability. The zero value is not usable;
// call NewReporter.
type Reporter struct {
	grpc *health.Server
	ok   atomic.Bool
}

// NewReporter starts with notifications marked available and the overall
// server SERVING.
func NewReporter() *Reporter {
	r := &Reporter{grpc: health.NewServer()}
	r.grpc.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	r.SetNotifications(true)
	return r
}

// SetNotifications updates both surfaces.
func (r *Reporter) SetNotifications(available bool) {
	r.ok.Store(available)
	status := healthpb.HealthCheckResponse_SERVING
	if !available {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.grpc.SetServingStatus(NotificationsService, status)
}

// Notifications returns "available" or "unavailable".
func (r *Reporter) Notifications() string {
	if r.ok.Load() {
		return "available"
	}
	return "unavailable"
}

// GRPC returns the server to register with grpc_health_v1.
func (r *Reporter) GRPC() *health.Server { return r.grpc }

// Shutdown marks every service NOT_SERVING so load balancers drain.
func (r *Reporter) Shutdown() { r.grpc.Shutdown() }
