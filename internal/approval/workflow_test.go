package approval

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/types"
)

type statusCall struct {
	ContactID string
	Status    types.OutreachStatus
	Message   string
}

type fakeContacts struct {
	calls     []statusCall
	status    map[string]types.OutreachStatus
	failErr   error
	statusErr error
}

func (f *fakeContacts) record(c statusCall) error {
	if f.failErr != nil {
		return f.failErr
	}
	if f.status == nil {
		f.status = map[string]types.OutreachStatus{}
	}
	f.status[c.ContactID] = c.Status
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeContacts) ContactStatus(_ context.Context, contactID string) (types.OutreachStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status[contactID], nil
}

func (f *fakeContacts) SaveMessageDraft(_ context.Context, contactID, message string) error {
	return f.record(statusCall{contactID, types.StatusDrafted, message})
}

func (f *fakeContacts) MarkContactApproved(_ context.Context, contactID, message string) error {
	return f.record(statusCall{contactID, types.StatusApproved, message})
}

func (f *fakeContacts) UpdateContactStatus(_ context.Context, contactID string, status types.OutreachStatus, _ map[string]any) error {
	return f.record(statusCall{ContactID: contactID, Status: status})
}

type fakeRefiner struct {
	reqs []outreach.RefineRequest
	out  string
	err  error
}

func (f *fakeRefiner) Refine(_ context.Context, req outreach.RefineRequest) (*types.Draft, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &types.Draft{
		Message:    f.out,
		Pipeline:   req.Pipeline,
		CharCount:  outreach.CharCount(f.out),
		MaxAllowed: req.MaxLength,
	}, nil
}

type fakeNotifier struct {
	requests []*drafts.Session
	handoffs []*types.Handoff
	err      error
}

func (f *fakeNotifier) RequestApproval(_ context.Context, sess *drafts.Session) error {
	f.requests = append(f.requests, sess)
	return f.err
}

func (f *fakeNotifier) Handoff(_ context.Context, h *types.Handoff) error {
	f.handoffs = append(f.handoffs, h)
	return f.err
}

func testContext() *types.OutreachContext {
	return &types.OutreachContext{
		ContactID:   "recC",
		ContactName: "Jane Doe",
		ProfileURL:  "https://linkedin.com/in/janedoe",
		Company:     "Acme Health",
		Role:        "Epic Analyst",
		Pipeline:    types.PipelineHunter,
	}
}

func hunterDraft(msg string) *types.Draft {
	limit := 295
	return &types.Draft{
		Message:    msg,
		Pipeline:   types.PipelineHunter,
		CharCount:  outreach.CharCount(msg),
		MaxAllowed: &limit,
		HasEpicGap: true,
	}
}

func newTestWorkflow() (*Workflow, *fakeContacts, *fakeRefiner, *fakeNotifier, *drafts.MemoryStore) {
	contacts := &fakeContacts{}
	refiner := &fakeRefiner{out: "Hi Jane, shorter note."}
	notifier := &fakeNotifier{}
	store := drafts.NewMemoryStore()
	return NewWorkflow(contacts, store, refiner, notifier, nil), contacts, refiner, notifier, store
}

func TestWorkflow_SubmitReviseApprove(t *testing.T) {
	w, contacts, refiner, notifier, store := newTestWorkflow()
	ctx := context.Background()

	sess, err := w.Submit(ctx, testContext(), hunterDraft("Hi Jane, I saw the Epic Analyst role."))
	require.NoError(t, err)
	assert.Equal(t, "recC", sess.Draft.ContactID)
	assert.NotEmpty(t, sess.Draft.ID)
	assert.Equal(t, types.StatusDrafted, sess.Status)
	require.Len(t, notifier.requests, 1)

	revised, err := w.Revise(ctx, "recC", "make it shorter")
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane, shorter note.", revised.Draft.Message)
	assert.Equal(t, 1, revised.Draft.Revision)
	assert.Equal(t, sess.Draft.ID, revised.Draft.ID)
	assert.True(t, revised.Draft.HasEpicGap)

	require.Len(t, refiner.reqs, 1)
	assert.Equal(t, types.PipelineHunter, refiner.reqs[0].Pipeline)
	require.NotNil(t, refiner.reqs[0].MaxLength)
	assert.Equal(t, 295, *refiner.reqs[0].MaxLength)
	assert.Equal(t, "make it shorter", refiner.reqs[0].Instruction)

	h, err := w.Approve(ctx, "recC")
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane, shorter note.", h.Message)
	assert.Equal(t, "https://linkedin.com/in/janedoe", h.ProfileURL)
	assert.Contains(t, h.Instruction, "Connect")
	assert.Equal(t, 0, store.Len())
	require.Len(t, notifier.handoffs, 1)

	statuses := make([]types.OutreachStatus, 0, len(contacts.calls))
	for _, c := range contacts.calls {
		statuses = append(statuses, c.Status)
	}
	assert.Equal(t, []types.OutreachStatus{types.StatusDrafted, types.StatusDrafted, types.StatusApproved}, statuses)
}

func TestWorkflow_FarmerHandoffInstruction(t *testing.T) {
	w, _, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	oc := testContext()
	oc.Pipeline = types.PipelineFarmer
	_, err := w.Submit(ctx, oc, &types.Draft{Message: "Hey Jane, long time!", Pipeline: types.PipelineFarmer, CharCount: 20})
	require.NoError(t, err)

	h, err := w.Approve(ctx, "recC")
	require.NoError(t, err)
	assert.Contains(t, h.Instruction, "click Message")
}

func TestWorkflow_SubmitRejectsInvalidDrafts(t *testing.T) {
	w, contacts, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	_, err := w.Submit(ctx, nil, hunterDraft("hi"))
	assert.Error(t, err)

	_, err = w.Submit(ctx, testContext(), hunterDraft("   "))
	assert.Error(t, err)

	over := hunterDraft(strings.Repeat("a", 296))
	_, err = w.Submit(ctx, testContext(), over)
	assert.ErrorContains(t, err, "limit is 295")

	assert.Empty(t, contacts.calls)
}

func TestWorkflow_ApproveWithoutDraft(t *testing.T) {
	w, contacts, _, _, _ := newTestWorkflow()

	_, err := w.Approve(context.Background(), "recNone")
	var noDraft *NoDraftError
	require.ErrorAs(t, err, &noDraft)
	assert.Equal(t, "recNone", noDraft.ContactID)
	assert.Empty(t, contacts.calls)
}

func TestWorkflow_Skip(t *testing.T) {
	t.Run("from drafted", func(t *testing.T) {
		w, contacts, _, _, store := newTestWorkflow()
		ctx := context.Background()
		_, err := w.Submit(ctx, testContext(), hunterDraft("Hi Jane"))
		require.NoError(t, err)

		require.NoError(t, w.Skip(ctx, "recC"))
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, types.StatusSkipped, contacts.calls[len(contacts.calls)-1].Status)
	})

	t.Run("from ready", func(t *testing.T) {
		w, contacts, _, _, _ := newTestWorkflow()
		require.NoError(t, w.Skip(context.Background(), "recC"))
		require.Len(t, contacts.calls, 1)
		assert.Equal(t, types.StatusSkipped, contacts.calls[0].Status)
	})

	t.Run("not out of approved", func(t *testing.T) {
		w, contacts, _, _, _ := newTestWorkflow()
		contacts.status = map[string]types.OutreachStatus{"recC": types.StatusApproved}

		err := w.Skip(context.Background(), "recC")
		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, types.StatusApproved, te.From)
		assert.Empty(t, contacts.calls)
	})

	t.Run("status lookup failure", func(t *testing.T) {
		w, contacts, _, _, _ := newTestWorkflow()
		contacts.statusErr = errors.New("airtable down")

		err := w.Skip(context.Background(), "recC")
		assert.ErrorContains(t, err, "airtable down")
		assert.Empty(t, contacts.calls)
	})
}

func TestWorkflow_StatusOnlyMovesForward(t *testing.T) {
	ctx := context.Background()
	steps := map[string]func(w *Workflow) error{
		"submit": func(w *Workflow) error {
			_, err := w.Submit(ctx, testContext(), hunterDraft("Hi Jane, again."))
			return err
		},
		"revise": func(w *Workflow) error {
			_, err := w.Revise(ctx, "recC", "warmer")
			return err
		},
		"approve": func(w *Workflow) error {
			_, err := w.Approve(ctx, "recC")
			return err
		},
		"skip": func(w *Workflow) error {
			return w.Skip(ctx, "recC")
		},
	}

	tests := []struct {
		name   string
		setup  []string
		step   string
		from   types.OutreachStatus
		target types.OutreachStatus
	}{
		{name: "skip after approve", setup: []string{"submit", "approve"}, step: "skip", from: types.StatusApproved, target: types.StatusSkipped},
		{name: "submit after approve", setup: []string{"submit", "approve"}, step: "submit", from: types.StatusApproved, target: types.StatusDrafted},
		{name: "submit after skip", setup: []string{"skip"}, step: "submit", from: types.StatusSkipped, target: types.StatusDrafted},
		{name: "skip twice", setup: []string{"skip"}, step: "skip", from: types.StatusSkipped, target: types.StatusSkipped},
		{name: "submit after skipping a draft", setup: []string{"submit", "skip"}, step: "submit", from: types.StatusSkipped, target: types.StatusDrafted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, contacts, _, _, _ := newTestWorkflow()
			for _, name := range tt.setup {
				require.NoError(t, steps[name](w), name)
			}
			writes := len(contacts.calls)

			err := steps[tt.step](w)
			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "recC", te.ContactID)
			assert.Equal(t, tt.from, te.From)
			assert.Equal(t, tt.target, te.To)
			assert.Len(t, contacts.calls, writes)
		})
	}
}

func TestWorkflow_ChecksStoredStatusOverLiveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("approve and revise refuse a skipped contact", func(t *testing.T) {
		w, contacts, _, _, store := newTestWorkflow()
		require.NoError(t, store.Save(ctx, &drafts.Session{
			Draft:  types.Draft{ContactID: "recC", Message: "Hi Jane"},
			Status: types.StatusDrafted,
		}))
		contacts.status = map[string]types.OutreachStatus{"recC": types.StatusSkipped}

		_, err := w.Approve(ctx, "recC")
		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, types.StatusApproved, te.To)

		_, err = w.Revise(ctx, "recC", "shorter")
		require.ErrorAs(t, err, &te)
		assert.Equal(t, types.StatusDrafted, te.To)
		assert.Empty(t, contacts.calls)
	})

	t.Run("submit trusts the resolved status", func(t *testing.T) {
		w, contacts, _, _, _ := newTestWorkflow()
		contacts.statusErr = errors.New("should not be read")
		oc := testContext()
		oc.Status = types.StatusSent

		_, err := w.Submit(ctx, oc, hunterDraft("Hi Jane"))
		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, types.StatusSent, te.From)

		oc.Status = types.StatusReady
		_, err = w.Submit(ctx, oc, hunterDraft("Hi Jane"))
		require.NoError(t, err)
		assert.Equal(t, types.StatusDrafted, contacts.status["recC"])
	})
}

func TestWorkflow_FailuresDoNotLoseDrafts(t *testing.T) {
	t.Run("notifier failure is logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		store := drafts.NewMemoryStore()
		w := NewWorkflow(&fakeContacts{}, store, &fakeRefiner{}, &fakeNotifier{err: errors.New("bot down")}, logger)

		_, err := w.Submit(context.Background(), testContext(), hunterDraft("Hi Jane"))
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
		assert.Contains(t, buf.String(), "failed to request approval")
	})

	t.Run("refine failure keeps previous draft", func(t *testing.T) {
		w, _, refiner, _, store := newTestWorkflow()
		ctx := context.Background()
		_, err := w.Submit(ctx, testContext(), hunterDraft("Hi Jane"))
		require.NoError(t, err)

		refiner.err = errors.New("model unavailable")
		_, err = w.Revise(ctx, "recC", "warmer")
		require.Error(t, err)

		sess, err := store.Get(ctx, "recC")
		require.NoError(t, err)
		assert.Equal(t, "Hi Jane", sess.Draft.Message)
	})

	t.Run("store failure on approve", func(t *testing.T) {
		w, contacts, _, _, store := newTestWorkflow()
		ctx := context.Background()
		_, err := w.Submit(ctx, testContext(), hunterDraft("Hi Jane"))
		require.NoError(t, err)

		contacts.failErr = errors.New("airtable down")
		_, err = w.Approve(ctx, "recC")
		require.Error(t, err)
		assert.Equal(t, 1, store.Len())
	})
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier_EscapesHTML(t *testing.T) {
	bot := &fakeSender{}
	n := &TelegramNotifier{bot: bot, chatID: 42}

	limit := 295
	err := n.RequestApproval(context.Background(), &drafts.Session{
		Draft: types.Draft{
			ContactID:  "recC",
			Message:    "Hi <Jane> & team",
			Pipeline:   types.PipelineHunter,
			CharCount:  16,
			MaxAllowed: &limit,
		},
		ContactName: "Jane Doe",
		Company:     "Acme",
	})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg := bot.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Hi &lt;Jane&gt; &amp; team")
	assert.Contains(t, msg.Text, "16 chars (295 max)")
	assert.Contains(t, msg.Text, "<code>recC</code>")
}

func TestTelegramNotifier_Handoff(t *testing.T) {
	bot := &fakeSender{}
	n := &TelegramNotifier{bot: bot, chatID: 42}

	require.NoError(t, n.Handoff(context.Background(), &types.Handoff{
		ContactName: "Jane Doe",
		ProfileURL:  "https://linkedin.com/in/janedoe",
		Message:     "Hi Jane",
		Instruction: farmerInstruction,
	}))
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, `href="https://linkedin.com/in/janedoe"`)
	assert.Contains(t, bot.sent[0].Text, "<pre>Hi Jane</pre>")
}
