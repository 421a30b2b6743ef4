// Package approval moves drafts through human review. Nothing is sent
// automatically: approval ends in a Handoff the user pastes by hand.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	hunterInstruction = "Open the profile, click Connect, choose \"Add a note\" and paste the message."
	farmerInstruction = "Open the profile, click Message and paste the message."
)

// ContactUpdater reads and persists outreach status on the contact row.
type ContactUpdater interface {
	ContactStatus(ctx context.Context, contactID string) (types.OutreachStatus, error)
	SaveMessageDraft(ctx context.Context, contactID, message string) error
	MarkContactApproved(ctx context.Context, contactID, message string) error
	UpdateContactStatus(ctx context.Context, contactID string, status types.OutreachStatus, fields map[string]any) error
}

// Refiner rewrites a draft from an edit instruction.
type Refiner interface {
	Refine(ctx context.Context, req outreach.RefineRequest) (*types.Draft, error)
}

// Workflow coordinates the contact store, the live draft store and the notifier.
type Workflow struct {
	contacts ContactUpdater
	drafts   drafts.Store
	refiner  Refiner
	notifier Notifier
	logger   *slog.Logger
}

// NewWorkflow creates a Workflow. A nil notifier logs approval requests.
func NewWorkflow(contacts ContactUpdater, store drafts.Store, refiner Refiner, notifier Notifier, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Workflow{
		contacts: contacts,
		drafts:   store,
		refiner:  refiner,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit persists a freshly generated draft and asks for approval. The
// contact must be Ready or Drafted; oc.Status is trusted when set,
// otherwise the stored status is read.
func (w *Workflow) Submit(ctx context.Context, oc *types.OutreachContext, draft *types.Draft) (*drafts.Session, error) {
	if oc == nil || oc.ContactID == "" {
		return nil, errors.New("outreach context with a contact ID is required")
	}
	if draft == nil || strings.TrimSpace(draft.Message) == "" {
		return nil, errors.New("draft message is empty")
	}
	if !draft.WithinLimit() {
		return nil, fmt.Errorf("draft is %d characters, limit is %d", draft.CharCount, *draft.MaxAllowed)
	}

	from := oc.Status
	if from == "" {
		var err error
		if from, err = w.stored(ctx, oc.ContactID); err != nil {
			return nil, err
		}
	}
	if !from.CanTransitionTo(types.StatusDrafted) {
		return nil, &TransitionError{ContactID: oc.ContactID, From: from, To: types.StatusDrafted}
	}

	d := *draft
	d.ContactID = oc.ContactID
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	sess := &drafts.Session{
		Draft:       d,
		Status:      types.StatusDrafted,
		ContactName: oc.ContactName,
		ProfileURL:  oc.ProfileURL,
		Company:     oc.Company,
		Role:        oc.Role,
	}
	if err := w.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Revise refines the live draft with the same pipeline and limit.
func (w *Workflow) Revise(ctx context.Context, contactID, instruction string) (*drafts.Session, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, errors.New("edit instruction is required")
	}
	sess, err := w.live(ctx, contactID)
	if err != nil {
		return nil, err
	}
	from, err := w.stored(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if !from.CanTransitionTo(types.StatusDrafted) {
		return nil, &TransitionError{ContactID: contactID, From: from, To: types.StatusDrafted}
	}

	refined, err := w.refiner.Refine(ctx, outreach.RefineRequest{
		Message:     sess.Draft.Message,
		Instruction: instruction,
		MaxLength:   sess.Draft.MaxAllowed,
		Pipeline:    sess.Draft.Pipeline,
	})
	if err != nil {
		return nil, err
	}

	refined.ContactID = contactID
	refined.ID = sess.Draft.ID
	refined.HasEpicGap = sess.Draft.HasEpicGap
	refined.Revision = sess.Draft.Revision + 1

	next := *sess
	next.Draft = *refined
	next.Status = types.StatusDrafted
	next.UpdatedAt = time.Time{}
	if err := w.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Approve records the live draft as final and returns the manual handoff.
func (w *Workflow) Approve(ctx context.Context, contactID string) (*types.Handoff, error) {
	sess, err := w.live(ctx, contactID)
	if err != nil {
		return nil, err
	}
	from, err := w.stored(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if !from.CanTransitionTo(types.StatusApproved) {
		return nil, &TransitionError{ContactID: contactID, From: from, To: types.StatusApproved}
	}

	if err := w.contacts.MarkContactApproved(ctx, contactID, sess.Draft.Message); err != nil {
		return nil, fmt.Errorf("failed to mark contact approved: %w", err)
	}
	if err := w.drafts.Delete(ctx, contactID); err != nil {
		w.logger.WarnContext(ctx, "failed to delete approved draft", slog.String("contact_id", contactID), slog.Any("error", err))
	}

	instruction := hunterInstruction
	if sess.Draft.Pipeline == types.PipelineFarmer {
		instruction = farmerInstruction
	}
	h := &types.Handoff{
		ContactID:   contactID,
		ContactName: sess.ContactName,
		ProfileURL:  sess.ProfileURL,
		Message:     sess.Draft.Message,
		Instruction: instruction,
	}

	if err := w.notifier.Handoff(ctx, h); err != nil {
		w.logger.WarnContext(ctx, "failed to send handoff", slog.String("contact_id", contactID), slog.Any("error", err))
	}
	w.logger.InfoContext(ctx, "draft approved",
		slog.String("contact_id", contactID),
		slog.Int("revision", sess.Draft.Revision),
		slog.Int("char_count", sess.Draft.CharCount))
	return h, nil
}

// Skip marks the contact Skipped and drops any live draft. Only Ready and
// Drafted contacts can be skipped.
func (w *Workflow) Skip(ctx context.Context, contactID string) error {
	if contactID == "" {
		return errors.New("contact ID is required")
	}
	from, err := w.stored(ctx, contactID)
	if err != nil {
		return err
	}
	if !from.CanTransitionTo(types.StatusSkipped) {
		return &TransitionError{ContactID: contactID, From: from, To: types.StatusSkipped}
	}

	if err := w.contacts.UpdateContactStatus(ctx, contactID, types.StatusSkipped, nil); err != nil {
		return fmt.Errorf("failed to skip contact: %w", err)
	}
	return w.drafts.Delete(ctx, contactID)
}

// Pending returns the live draft for a contact.
func (w *Workflow) Pending(ctx context.Context, contactID string) (*drafts.Session, error) {
	return w.live(ctx, contactID)
}

// stored reads the contact's status. An empty status reads as Ready.
func (w *Workflow) stored(ctx context.Context, contactID string) (types.OutreachStatus, error) {
	status, err := w.contacts.ContactStatus(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to load contact status: %w", err)
	}
	if status == "" {
		return types.StatusReady, nil
	}
	return status, nil
}

func (w *Workflow) live(ctx context.Context, contactID string) (*drafts.Session, error) {
	if contactID == "" {
		return nil, errors.New("contact ID is required")
	}
	sess, err := w.drafts.Get(ctx, contactID)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			return nil, &NoDraftError{ContactID: contactID}
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return sess, nil
}

// persist writes the draft to the contact row and the draft store, then
// notifies. A notification failure is logged and does not undo the draft.
func (w *Workflow) persist(ctx context.Context, sess *drafts.Session) error {
	contactID := sess.Draft.ContactID
	if err := w.contacts.SaveMessageDraft(ctx, contactID, sess.Draft.Message); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if err := w.drafts.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	if err := w.notifier.RequestApproval(ctx, sess); err != nil {
		w.logger.WarnContext(ctx, "failed to request approval", slog.String("contact_id", contactID), slog.Any("error", err))
	}
	return nil
}
