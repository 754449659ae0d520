package utils

import (
	"go.mongodb.org/mongo-driver/event"
)

// NewPoolMonitor reports connection pool activity to the mongo_pool_connections gauge.
func NewPoolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			switch evt.Type {
			case event.ConnectionCreated:
				MongoConnections.WithLabelValues("open").Inc()
			case event.ConnectionClosed:
				MongoConnections.WithLabelValues("open").Dec()
			case event.GetSucceeded:
				MongoConnections.WithLabelValues("in_use").Inc()
			case event.ConnectionReturned:
				MongoConnections.WithLabelValues("in_use").Dec()
			}
		},
	}
}
