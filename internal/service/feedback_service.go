package service

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"edushare/internal/models"
	"edushare/internal/repository"
	"edushare/pkg/apperror"
)

const maxFeedbackComment = 1000

type FeedbackService struct {
	resources *repository.ResourceRepository
	users     *repository.UserRepository
	notify    *NotificationService
}

func NewFeedbackService(resources *repository.ResourceRepository, users *repository.UserRepository, notify *NotificationService) *FeedbackService {
	return &FeedbackService{resources: resources, users: users, notify: notify}
}

// Submit records the author's rating of a resource, replacing any earlier one, and
// notifies the resource owner. Owners rating their own resource are not notified.
func (s *FeedbackService) Submit(ctx context.Context, resourceID, authorID string, rating int, comment string) (*models.Resource, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.InvalidInput("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxFeedbackComment {
		return nil, apperror.InvalidInput("comment is too long")
	}
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, storeError(err, "resource not found")
	}
	updated, err := s.resources.UpsertFeedback(ctx, &models.ResourceFeedback{
		ResourceID: res.ID,
		UserID:     authorID,
		Rating:     rating,
		Comment:    comment,
	})
	if err != nil {
		return nil, storeError(err, "resource not found")
	}
	if updated.OwnerID != authorID && s.notify != nil {
		name := ""
		if u, err := s.users.GetByID(ctx, authorID); err == nil {
			name = u.Name
		}
		if _, err := s.notify.NotifyNewFeedback(ctx, updated, authorID, name, rating); err != nil {
			log.Printf("[feedback] notify owner of %s: %v", updated.ID, err)
		}
	}
	return updated, nil
}
