package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

// ModerationService dispatches moderator actions against reports. Every
// dispatch is one logical, all-or-nothing operation: the status propagation
// or content deletion commits together with the report settlement, or neither
// does and the report stays open.
type ModerationService struct {
	store      store.Store
	propagator *Propagator
}

func NewModerationService(s store.Store, p *Propagator) *ModerationService {
	return &ModerationService{store: s, propagator: p}
}

// Business-rule failures pass through the transaction wrapper unwrapped;
// anything else is a commit failure and gets reported as retryable.
func isBusinessErr(err error) bool {
	return errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrContentNotFound)
}

// ModerateContent resolves the report with the given action. moderator is the
// acting moderator's username, recorded on the settled report.
//
// ban/restrict look the reported user up by username and run the status
// propagation; delete hard-deletes the reported Comment or BlogPost. Deleting
// a BlogPost deliberately leaves its comments in place: comments are only
// reachable through their post today, and navigating to them via the deleted
// post will 404, which is acceptable.
func (s *ModerationService) ModerateContent(ctx context.Context, reportID, action, moderator string) error {
	if !models.ValidAction(action) {
		return fmt.Errorf("unrecognized action %q", action)
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		// Settled is re-checked inside the transaction so two concurrent
		// dispatches can never both apply.
		report, err := s.store.Reports().FindByID(ctx, reportID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if report.Settled {
			return ErrAlreadySettled
		}

		now := time.Now().UTC()

		switch action {
		case models.ActionBan, models.ActionRestrict:
			newStatus := models.StatusBanned
			if action == models.ActionRestrict {
				newStatus = models.StatusRestricted
			}

			// Usernames are unique, stable external references.
			user, err := s.store.Users().FindByUsername(ctx, report.ReportedUser)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrUserNotFound
				}
				return err
			}

			if err := s.propagator.ApplyUserStatus(ctx, user.ID, newStatus); err != nil {
				return err
			}

			return s.store.Reports().Settle(ctx, report.ID, models.Resolution{
				ActionTaken:         newStatus,
				DateOfAction:        now,
				RespondingModerator: moderator,
			})

		case models.ActionDelete:
			if err := s.deleteContent(ctx, report.ContentType, report.ContentID); err != nil {
				return err
			}

			return s.store.Reports().Settle(ctx, report.ID, models.Resolution{
				ActionTaken:         models.ActionTakenDelete,
				DateOfAction:        now,
				RespondingModerator: moderator,
			})
		}
		return nil
	})
	if err != nil {
		if isBusinessErr(err) {
			return err
		}
		log.Printf("[moderation] action failed report=%s action=%s err=%v", reportID, action, err)
		return fmt.Errorf("%w: mod action: %v", ErrTransactionFailed, err)
	}

	log.Printf("[moderation] report=%s action=%s moderator=%s", reportID, action, moderator)
	return nil
}

func (s *ModerationService) deleteContent(ctx context.Context, contentType, contentID string) error {
	var err error
	switch contentType {
	case models.ContentComment:
		err = s.store.Comments().Delete(ctx, contentID)
	case models.ContentBlogPost:
		err = s.store.Posts().Delete(ctx, contentID)
	default:
		return fmt.Errorf("unrecognized content type %q", contentType)
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrContentNotFound
	}
	return err
}

// ModerateUser applies a standalone console action to a user account. Status
// changes run the full propagation; account type changes and account deletion
// are admin-only.
func (s *ModerationService) ModerateUser(ctx context.Context, actorType, userID string, req models.ModerateUserRequest) error {
	if req.DeleteUser {
		if actorType != models.AccountAdmin {
			return ErrForbidden
		}
		return s.deleteAccount(ctx, userID)
	}

	if req.AccountStatus != "" {
		if !models.ValidStatus(req.AccountStatus) {
			return fmt.Errorf("unrecognized account status %q", req.AccountStatus)
		}
		return s.propagator.PropagateUserStatus(ctx, userID, req.AccountStatus)
	}

	if req.AccountType != "" {
		if actorType != models.AccountAdmin {
			return ErrForbidden
		}
		if !models.ValidAccountType(req.AccountType) {
			return fmt.Errorf("unrecognized account type %q", req.AccountType)
		}
		err := s.store.Users().UpdateAccountType(ctx, userID, req.AccountType)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

// deleteAccount removes the user and everything they own in one transaction.
// Unlike moderation delete, this cascade is intentional: the account is gone,
// so its content goes with it.
func (s *ModerationService) deleteAccount(ctx context.Context, userID string) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.store.Comments().DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := s.store.Posts().DeleteByAuthor(ctx, userID); err != nil {
			return err
		}
		if err := s.store.Blogs().DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		return s.store.Users().Delete(ctx, userID)
	})
	if err != nil {
		if isBusinessErr(err) {
			return err
		}
		return fmt.Errorf("%w: delete account: %v", ErrTransactionFailed, err)
	}

	log.Printf("[moderation] account deleted user=%s", userID)
	return nil
}

// ModeratedContent is a moderator's raw view of reported content.
type ModeratedContent struct {
	ContentType string      `json:"content_type"`
	Content     interface{} `json:"content"`
}

// GetContent fetches reported content without any visibility filtering;
// moderators need to see content the public read paths hide.
func (s *ModerationService) GetContent(ctx context.Context, contentType, contentID string) (*ModeratedContent, error) {
	switch contentType {
	case models.ContentComment:
		c, err := s.store.Comments().FindByID(ctx, contentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrContentNotFound
			}
			return nil, err
		}
		return &ModeratedContent{ContentType: contentType, Content: c}, nil
	case models.ContentBlogPost:
		p, err := s.store.Posts().FindByID(ctx, contentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrContentNotFound
			}
			return nil, err
		}
		return &ModeratedContent{ContentType: contentType, Content: p}, nil
	}
	return nil, fmt.Errorf("unrecognized content type %q", contentType)
}

// ListUsers is the moderator console's user search. Admins see full records;
// the handler redacts for non-admin moderators.
func (s *ModerationService) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	return s.store.Users().Find(ctx, filter)
}
