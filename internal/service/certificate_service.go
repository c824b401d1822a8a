package service

import (
	"context"
	"log"
	"time"

	"progress-service/internal/event"
	"progress-service/internal/models"
)

// CertificateService is the boundary to certificate issuance. It only
// decides that a certificate should be issued and records an idempotent
// request; rendering is a downstream consumer of the issuance event.
type CertificateService struct {
	issuances IssuanceStore
	publisher event.Publisher
}

func NewCertificateService(issuances IssuanceStore, publisher event.Publisher) *CertificateService {
	return &CertificateService{issuances: issuances, publisher: publisher}
}

// MaybeIssueCertificate is invoked on the false->true course-completion
// edge. The deterministic issuance key makes re-runs harmless: only the
// call that actually creates the record publishes the request event.
// Callers treat a returned error as best-effort: completion stands.
func (s *CertificateService) MaybeIssueCertificate(ctx context.Context, userID string, course *models.Course) error {
	if course.CertificateID == "" {
		return nil
	}

	issuance := &models.CertificateIssuance{
		ID:            models.IssuanceKey(userID, course.ID.Hex(), course.CertificateID),
		UserID:        userID,
		CourseID:      course.ID.Hex(),
		CertificateID: course.CertificateID,
		Status:        models.IssuanceRequested,
		RequestedAt:   time.Now().UTC(),
	}

	created, err := s.issuances.CreateIfAbsent(ctx, issuance)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if err := s.publisher.PublishProgressEvent(event.NewCertificateIssueEvent(issuance)); err != nil {
		log.Printf("Failed to publish certificate issuance event for %s: %v", issuance.ID, err)
	}
	return nil
}
