package domain

import "time"

// Visitor is the identity record kept in the visitor directory.
// NationalID (CPF digits) is the deduplication key and never changes.
type Visitor struct {
	ID         string    `json:"id"`
	FullName   string    `json:"nome"`
	Company    string    `json:"empresa"`
	NationalID string    `json:"cpf"`
	Plate      string    `json:"placa"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VisitorDetails carries the mutable fields supplied at registration.
type VisitorDetails struct {
	FullName   string
	Company    string
	NationalID string
	Plate      string
}
