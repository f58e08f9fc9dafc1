// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that move them.
package queue

// EscalationQueue is the durable queue carrying PrescriptionEscalatedEvent.
const EscalationQueue = "prescription.escalated"

// PrescriptionEscalatedEvent is published after a patient reports that a
// prescription is unaffordable and the status change has committed.  It
// lets downstream consumers (audit log, SMS gateways) react without
// querying the primary database.
type PrescriptionEscalatedEvent struct {
	PrescriptionID uint64   `json:"prescription_id"`
	Patient        string   `json:"patient"`
	Doctor         string   `json:"doctor"`
	NotifiedUsers  []string `json:"notified"`
	EscalatedAt    string   `json:"escalated_at"`
}
