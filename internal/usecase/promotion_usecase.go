package usecase

import (
	"context"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// PromotionUsecase uploads the staged statements of an (item, user) pair to the knowledge base.
type PromotionUsecase interface {
	// Promote uploads every staged statement of the caller for itemID in insertion order and purges the
	// local rows once all of them made it. It stops at the first remote failure and returns a
	// *entity.PromotionError; claims created before the failure are not rolled back.
	Promote(ctx context.Context, identity *entity.Identity, itemID string) (*entity.PromotionReport, error)
}

type promotionUsecase struct {
	statements repository.StatementRepository
	qualifiers repository.QualifierRepository
	kb         repository.KnowledgeBase
	logger     *logrus.Logger
}

func NewPromotionUsecase(statements repository.StatementRepository, qualifiers repository.QualifierRepository,
	kb repository.KnowledgeBase, logger *logrus.Logger) PromotionUsecase {
	return &promotionUsecase{statements: statements, qualifiers: qualifiers, kb: kb, logger: logger}
}

func (u *promotionUsecase) Promote(ctx context.Context, identity *entity.Identity, itemID string) (*entity.PromotionReport, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	itemID, err := entity.ParseEntityID(itemID)
	if err != nil {
		return nil, err
	}

	// Snapshot. Rows staged after this read are not uploaded and survive the purge below,
	// which only targets these ids; comments and approvals of the pair do not.
	staged, err := u.statements.ListByItemUser(ctx, itemID, identity.Username)
	if err != nil {
		return nil, err
	}
	report := &entity.PromotionReport{ItemID: itemID, Username: identity.Username}
	if len(staged) == 0 {
		return report, nil
	}

	session, err := u.kb.Session(identity)
	if err != nil {
		return nil, err
	}
	refs := lo.Map(staged, func(s entity.Statement, _ int) string { return s.Ref() })
	qualifiers, err := u.qualifiers.FindMany(ctx, refs)
	if err != nil {
		return nil, err
	}

	report.Outcomes = make([]entity.PromotionOutcome, len(staged))
	for i := range staged {
		report.Outcomes[i] = entity.PromotionOutcome{StatementID: staged[i].ID, State: entity.PromotionStaged}
	}
	for i := range staged {
		stmt := &staged[i]
		outcome := &report.Outcomes[i]
		if err := u.upload(ctx, session, stmt, qualifiers, outcome); err != nil {
			outcome.Error = err.Error()
			u.log().WithFields(logrus.Fields{
				"item_id":      itemID,
				"username":     identity.Username,
				"statement_id": stmt.ID,
				"state":        outcome.State,
				"uploaded":     report.Uploaded(),
			}).WithError(err).Warn("promotion stopped")
			return report, &entity.PromotionError{Report: report, StatementID: stmt.ID, Err: err}
		}
	}

	ids := lo.Map(staged, func(s entity.Statement, _ int) int64 { return s.ID })
	if err := u.statements.Purge(ctx, itemID, identity.Username, ids); err != nil {
		return report, err
	}
	report.Purged = true
	for i := range report.Outcomes {
		report.Outcomes[i].State = entity.PromotionPromoted
	}
	u.log().WithFields(logrus.Fields{"item_id": itemID, "username": identity.Username, "statements": len(ids)}).
		Info("annotations promoted")
	return report, nil
}

// upload walks one statement through claim, qualifier and reference, recording each reached state.
func (u *promotionUsecase) upload(ctx context.Context, session repository.KnowledgeSession, stmt *entity.Statement,
	qualifiers map[string]entity.Qualifier, outcome *entity.PromotionOutcome) error {
	claimID, err := session.CreateClaim(ctx, stmt.ItemID, stmt.PropertyID, stmt.Snak)
	if err != nil {
		return err
	}
	outcome.ClaimID = claimID
	outcome.State = entity.PromotionClaimCreated

	if q, ok := qualifiers[stmt.Ref()]; ok {
		if _, err := session.SetQualifier(ctx, claimID, q.Region, q.Hash); err != nil {
			return err
		}
		outcome.State = entity.PromotionQualifierApplied
	} else {
		outcome.State = entity.PromotionNoQualifier
	}

	if stmt.Reference == nil {
		outcome.State = entity.PromotionNoReference
		return nil
	}
	if err := session.SetReference(ctx, claimID, *stmt.Reference); err != nil {
		return err
	}
	outcome.State = entity.PromotionReferenceApplied
	return nil
}

func (u *promotionUsecase) log() logrus.FieldLogger {
	if u.logger == nil {
		return logrus.StandardLogger()
	}
	return u.logger
}
