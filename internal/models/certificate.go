package models

import "time"

// Issuance statuses. The renderer (a downstream consumer) moves a request
// out of "requested"; this service only ever creates requests.
const (
	IssuanceRequested = "requested"
)

// CertificateIssuance is the de-duplication record for certificate requests.
// Its _id is deterministic over (user, course, certificate) so that retries
// and repeated completion edges can never create a second request.
type CertificateIssuance struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	CourseID      string    `bson:"courseId" json:"courseId"`
	CertificateID string    `bson:"certificateId" json:"certificateId"`
	Status        string    `bson:"status" json:"status"`
	RequestedAt   time.Time `bson:"requestedAt" json:"requestedAt"`
}

// IssuanceKey builds the deterministic _id for an issuance record.
func IssuanceKey(userID, courseID, certificateID string) string {
	return userID + ":" + courseID + ":" + certificateID
}
