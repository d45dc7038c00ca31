// Package kafka holds the Kafka connection settings and the lifecycle
// component for the clinic service's event producer.
//
// The producer itself lives in kafka/producer; notify builds domain events
// on top of it.
//
//	kafka:
//	  enabled: true
//	  brokers: ["localhost:9092"]
//	  client_id: "clinic-api"
//	  topics:
//	    appointments: "appointments"
//	    prescriptions: "prescriptions"
package kafka
