package repository

import (
	"context"
	"fmt"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CertificateRepository stores issuance requests. The deterministic _id over
// (user, course, certificate) is the de-duplication mechanism: a second
// insert for the same key hits the primary key and is reported as already
// present, never as a new request.
type CertificateRepository struct {
	Col *mongo.Collection
}

func NewCertificateRepository(db *mongo.Database) *CertificateRepository {
	return &CertificateRepository{Col: db.Collection("certificate_issuances")}
}

// CreateIfAbsent inserts the issuance record, reporting whether this call
// created it. An existing record for the same key is not an error.
func (r *CertificateRepository) CreateIfAbsent(ctx context.Context, issuance *models.CertificateIssuance) (bool, error) {
	_, err := r.Col.InsertOne(ctx, issuance)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record certificate issuance %s: %w", issuance.ID, err)
	}
	return true, nil
}
