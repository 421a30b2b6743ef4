package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/outreach-agent/internal/airtable"
	"github.com/jonathan/outreach-agent/internal/approval"
	"github.com/jonathan/outreach-agent/internal/brain"
	"github.com/jonathan/outreach-agent/internal/content"
	"github.com/jonathan/outreach-agent/internal/discovery"
	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/knowledge"
	"github.com/jonathan/outreach-agent/internal/network"
	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/types"
)

// JobStore is the record store as seen by the webhook.
type JobStore interface {
	GetJobsNeedingContacts(ctx context.Context, status string) ([]types.JobApplication, error)
	GetJobDetails(ctx context.Context, jobID string) (*types.JobApplication, error)
	GetActiveJobs(ctx context.Context) ([]types.JobApplication, error)
	SaveContacts(ctx context.Context, jobID string, contacts []types.Contact) (*airtable.SaveResult, error)
	MarkContactsFound(ctx context.Context, jobID string) error
	ContactStatus(ctx context.Context, contactID string) (types.OutreachStatus, error)
	UpdateContactStatus(ctx context.Context, contactID string, status types.OutreachStatus, fields map[string]any) error
}

// ContactDiscoverer finds and saves contacts for one job.
type ContactDiscoverer interface {
	DiscoverForJob(ctx context.Context, jobID string, limit int) (*discovery.JobDiscovery, error)
}

// ContextResolver resolves a contact into an outreach context.
type ContextResolver interface {
	Resolve(ctx context.Context, contactID string) (*types.OutreachContext, error)
}

// MessageGenerator drafts and refines messages.
type MessageGenerator interface {
	GenerateMessage(ctx context.Context, in outreach.MessageInput) (*types.Draft, error)
	Refine(ctx context.Context, req outreach.RefineRequest) (*types.Draft, error)
}

// ApprovalWorkflow moves drafts through human approval.
type ApprovalWorkflow interface {
	Submit(ctx context.Context, oc *types.OutreachContext, draft *types.Draft) (*drafts.Session, error)
	Revise(ctx context.Context, contactID, instruction string) (*drafts.Session, error)
	Approve(ctx context.Context, contactID string) (*types.Handoff, error)
	Skip(ctx context.Context, contactID string) error
}

// ThoughtClassifier files free-text notes.
type ThoughtClassifier interface {
	Classify(ctx context.Context, content string) (*brain.Classification, error)
}

// NoteFiler stores classified notes in the knowledge base.
type NoteFiler interface {
	FileNote(ctx context.Context, note knowledge.Note) (*knowledge.PageRef, error)
}

// ContentGenerator turns a knowledge page into a content package.
type ContentGenerator interface {
	GeneratePackage(ctx context.Context, sourceID string) (*content.Package, error)
}

// Dependencies are the collaborators behind the actions. A nil field makes
// the actions that need it fail with *UnavailableError.
type Dependencies struct {
	Jobs       JobStore
	Discoverer ContactDiscoverer
	Resolver   ContextResolver
	Generator  MessageGenerator
	Approvals  ApprovalWorkflow
	Classifier ThoughtClassifier
	Notes      NoteFiler
	Content    ContentGenerator
}

type actionFunc func(ctx context.Context, body []byte) (any, error)

// Dispatcher runs registered actions against their dependencies.
type Dispatcher struct {
	deps     Dependencies
	validate *validator.Validate
	registry map[Action]actionFunc
}

// NewDispatcher creates a Dispatcher with every action registered.
func NewDispatcher(deps Dependencies) *Dispatcher {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	d := &Dispatcher{deps: deps, validate: validate}
	d.registry = map[Action]actionFunc{
		ActionGetJobsNeedingContacts: d.getJobsNeedingContacts,
		ActionDiscoverContacts:       d.discoverContacts,
		ActionSaveContacts:           d.saveContacts,
		ActionClassifyThought:        d.classifyThought,
		ActionRouteToNotion:          d.routeToNotion,
		ActionProcessBrainDump:       d.processBrainDump,
		ActionGenerateContent:        d.generateContent,
		ActionGetOutreachContext:     d.getOutreachContext,
		ActionGenerateMessage:        d.generateMessage,
		ActionRefineMessage:          d.refineMessage,
		ActionSubmitDraft:            d.submitDraft,
		ActionReviseDraft:            d.reviseDraft,
		ActionApproveDraft:           d.approveDraft,
		ActionSkipContact:            d.skipContact,
		ActionAnalyzeNetworkOverlap:  d.analyzeNetworkOverlap,
		ActionGetActiveJobs:          d.getActiveJobs,
		ActionGetJobDetails:          d.getJobDetails,
		ActionUpdateContactStatus:    d.updateContactStatus,
	}
	return d
}

// Dispatch decodes body into the action's request type, validates it and
// runs the action.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, body []byte) (any, error) {
	fn, ok := d.registry[action]
	if !ok {
		return nil, &UnsupportedOperationError{Action: string(action), Supported: Actions()}
	}
	return fn(ctx, body)
}

// decode unmarshals body into T and runs struct validation.
func decode[T any](d *Dispatcher, body []byte) (T, error) {
	var req T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, &ValidationError{Field: "(body)", Message: err.Error()}
		}
	}
	if err := d.validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

// Request types. The "action" field of the body is ignored by all of them.

type getJobsRequest struct {
	Status string `json:"status"`
}

type jobRequest struct {
	JobID string `json:"job_id" validate:"required"`
}

type discoverRequest struct {
	JobID string `json:"job_id" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=25"`
}

type saveContactsRequest struct {
	JobID    string          `json:"job_id" validate:"required"`
	Contacts []types.Contact `json:"contacts" validate:"required,min=1,dive"`
}

type classifyRequest struct {
	Content string `json:"content" validate:"required"`
}

type routeRequest struct {
	Content  string   `json:"content" validate:"required"`
	Category string   `json:"category" validate:"omitempty,oneof=Knowledge Task Project People Inbox"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Priority string   `json:"priority" validate:"omitempty,oneof=high medium low"`
}

type contentRequest struct {
	SourceID string `json:"knowledge_uuid" validate:"required"`
}

type contactRequest struct {
	ContactID string `json:"contact_id" validate:"required"`
}

type generateRequest struct {
	ContactName       string                 `json:"contact_name" validate:"required"`
	Company           string                 `json:"company" validate:"required"`
	JobTitle          string                 `json:"job_title" validate:"required"`
	ContactTitle      string                 `json:"contact_title"`
	ContactType       types.ContactType      `json:"contact_type" validate:"omitempty,oneof=hiring_manager recruiter team_member"`
	ConnectionDegree  types.ConnectionDegree `json:"connection_degree" validate:"omitempty,oneof=1st 2nd 3rd"`
	ContactSource     types.ContactSource    `json:"contact_source" validate:"omitempty,oneof=apollo csv_import"`
	JobDescription    string                 `json:"job_description"`
	ColdEmailTemplate string                 `json:"cold_email_template"`
	ResumeContext     string                 `json:"resume_context"`
	ResumeHighlights  string                 `json:"resume_highlights"`
	ConnectedDate     string                 `json:"connected_date"`
}

type refineRequest struct {
	Message     string         `json:"current_message" validate:"required"`
	Instruction string         `json:"edit_instruction" validate:"required"`
	MaxLength   *int           `json:"max_length" validate:"omitempty,min=4"`
	Pipeline    types.Pipeline `json:"pipeline" validate:"omitempty,oneof=hunter farmer"`
}

type reviseRequest struct {
	ContactID   string `json:"contact_id" validate:"required"`
	Instruction string `json:"edit_instruction" validate:"required"`
}

type overlapRequest struct {
	CSVContent string                 `json:"csv_content" validate:"required"`
	ActiveJobs []types.JobApplication `json:"active_jobs"`
	FuzzyMatch *bool                  `json:"fuzzy_match"`
}

type updateStatusRequest struct {
	ContactID string               `json:"contact_id" validate:"required"`
	Status    types.OutreachStatus `json:"status" validate:"required,oneof=Ready Drafted Approved Skipped Sent"`
	Fields    map[string]any       `json:"fields"`
}

// Results that wrap plain values.

type jobsResult struct {
	Count int                    `json:"count"`
	Jobs  []types.JobApplication `json:"jobs"`
}

type saveResult struct {
	*airtable.SaveResult
	MarkedFound bool `json:"contacts_found"`
}

type contextResult struct {
	Context *types.OutreachContext `json:"context"`
}

type draftResult struct {
	Draft *types.Draft `json:"draft"`
}

type statusResult struct {
	ContactID string               `json:"contact_id"`
	Status    types.OutreachStatus `json:"status"`
}

type contentResult struct {
	*content.Package
	Saved     bool   `json:"saved"`
	SaveError string `json:"save_error,omitempty"`
}

type overlapResult struct {
	*network.Overlap
	Stats *network.NetworkStats `json:"network_stats"`
}

func (d *Dispatcher) jobs() (JobStore, error) {
	if d.deps.Jobs == nil {
		return nil, &UnavailableError{Component: "job store"}
	}
	return d.deps.Jobs, nil
}

func (d *Dispatcher) getJobsNeedingContacts(ctx context.Context, body []byte) (any, error) {
	req, err := decode[getJobsRequest](d, body)
	if err != nil {
		return nil, err
	}
	store, err := d.jobs()
	if err != nil {
		return nil, err
	}
	jobs, err := store.GetJobsNeedingContacts(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	return jobsResult{Count: len(jobs), Jobs: jobs}, nil
}

func (d *Dispatcher) discoverContacts(ctx context.Context, body []byte) (any, error) {
	req, err := decode[discoverRequest](d, body)
	if err != nil {
		return nil, err
	}
	if d.deps.Discoverer == nil {
		return nil, &UnavailableError{Component: "contact discovery"}
	}
	return d.deps.Discoverer.DiscoverForJob(ctx, req.JobID, req.Limit)
}

func (d *Dispatcher) saveContacts(ctx context.Context, body []byte) (any, error) {
	req, err := decode[saveContactsRequest](d, body)
	if err != nil {
		return nil, err
	}
	store, err := d.jobs()
	if err != nil {
		return nil, err
	}
	saved, err := store.SaveContacts(ctx, req.JobID, req.Contacts)
	if err != nil {
		return nil, err
	}
	out := saveResult{SaveResult: saved}
	if saved.OK() {
		if err := store.MarkContactsFound(ctx, req.JobID); err != nil {
			return nil, fmt.Errorf("contacts saved but job not marked: %w", err)
		}
		out.MarkedFound = true
	}
	return out, nil
}

func (d *Dispatcher) classifyThought(ctx context.Context, body []byte) (any, error) {
	req, err := decode[classifyRequest](d, body)
	if err != nil {
		return nil, err
	}
	if d.deps.Classifier == nil {
		return nil, &UnavailableError{Component: "thought classifier"}
	}
	return d.deps.Classifier.Classify(ctx, req.Content)
}

func (d *Dispatcher) notes() (NoteFiler, error) {
	if d.deps.Notes == nil {
		return nil, &UnavailableError{Component: "knowledge base"}
	}
	return d.deps.Notes, nil
}

// routeToNotion files an already classified note. Missing fields fall back
// to the inbox defaults.
func (d *Dispatcher) routeToNotion(ctx context.Context, body []byte) (any, error) {
	req, err := decode[routeRequest](d, body)
	if err != nil {
		return nil, err
	}
	filer, err := d.notes()
	if err != nil {
		return nil, err
	}
	return filer.FileNote(ctx, knowledge.Note{
		Content:  req.Content,
		Category: orDefault(req.Category, string(brain.CategoryInbox)),
		Title:    orDefault(req.Title, "Untitled"),
		Tags:     req.Tags,
		Priority: orDefault(req.Priority, "medium"),
	})
}

// processBrainDump classifies and files a note in one call.
func (d *Dispatcher) processBrainDump(ctx context.Context, body []byte) (any, error) {
	req, err := decode[classifyRequest](d, body)
	if err != nil {
		return nil, err
	}
	if d.deps.Classifier == nil {
		return nil, &UnavailableError{Component: "thought classifier"}
	}
	filer, err := d.notes()
	if err != nil {
		return nil, err
	}
	return brain.Dump(ctx, d.deps.Classifier, filer, req.Content)
}

// generateContent builds a content package. Drafts generated before a failed
// save are still returned, marked unsaved.
func (d *Dispatcher) generateContent(ctx context.Context, body []byte) (any, error) {
	req, err := decode[contentRequest](d, body)
	if err != nil {
		return nil, err
	}
	if d.deps.Content == nil {
		return nil, &UnavailableError{Component: "content engine"}
	}
	pkg, err := d.deps.Content.GeneratePackage(ctx, req.SourceID)
	var step *content.StepError
	switch {
	case err == nil:
		return contentResult{Package: pkg, Saved: true}, nil
	case pkg != nil && errors.As(err, &step) && step.Step == "save":
		return contentResult{Package: pkg, SaveError: err.Error()}, nil
	default:
		return nil, err
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (d *Dispatcher) resolve(ctx context.Context, contactID string) (*types.OutreachContext, error) {
	if d.deps.Resolver == nil {
		return nil, &UnavailableError{Component: "context resolver"}
	}
	return d.deps.Resolver.Resolve(ctx, contactID)
}

func (d *Dispatcher) generator() (MessageGenerator, error) {
	if d.deps.Generator == nil {
		return nil, &UnavailableError{Component: "message generator"}
	}
	return d.deps.Generator, nil
}

func (d *Dispatcher) approvals() (ApprovalWorkflow, error) {
	if d.deps.Approvals == nil {
		return nil, &UnavailableError{Component: "approval workflow"}
	}
	return d.deps.Approvals, nil
}

func (d *Dispatcher) getOutreachContext(ctx context.Context, body []byte) (any, error) {
	req, err := decode[contactRequest](d, body)
	if err != nil {
		return nil, err
	}
	oc, err := d.resolve(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}
	return contextResult{Context: oc}, nil
}

func (d *Dispatcher) generateMessage(ctx context.Context, body []byte) (any, error) {
	req, err := decode[generateRequest](d, body)
	if err != nil {
		return nil, err
	}
	gen, err := d.generator()
	if err != nil {
		return nil, err
	}
	draft, err := gen.GenerateMessage(ctx, outreach.MessageInput{
		ContactName:      req.ContactName,
		ContactTitle:     req.ContactTitle,
		ContactType:      req.ContactType,
		ConnectionDegree: req.ConnectionDegree,
		ContactSource:    req.ContactSource,
		Company:          req.Company,
		Role:             req.JobTitle,
		JobDescription:   req.JobDescription,
		ConnectedOn:      req.ConnectedDate,
		Value: outreach.ValueInput{
			ColdEmail:        req.ColdEmailTemplate,
			ResumeContext:    req.ResumeContext,
			ResumeHighlights: req.ResumeHighlights,
		},
	})
	if err != nil {
		return nil, err
	}
	return draftResult{Draft: draft}, nil
}

func (d *Dispatcher) refineMessage(ctx context.Context, body []byte) (any, error) {
	req, err := decode[refineRequest](d, body)
	if err != nil {
		return nil, err
	}
	gen, err := d.generator()
	if err != nil {
		return nil, err
	}
	draft, err := gen.Refine(ctx, outreach.RefineRequest{
		Message:     req.Message,
		Instruction: req.Instruction,
		MaxLength:   req.MaxLength,
		Pipeline:    req.Pipeline,
	})
	if err != nil {
		return nil, err
	}
	return draftResult{Draft: draft}, nil
}

// submitDraft resolves the contact, drafts a message for it and sends the
// draft for approval.
func (d *Dispatcher) submitDraft(ctx context.Context, body []byte) (any, error) {
	req, err := decode[contactRequest](d, body)
	if err != nil {
		return nil, err
	}
	gen, err := d.generator()
	if err != nil {
		return nil, err
	}
	wf, err := d.approvals()
	if err != nil {
		return nil, err
	}
	oc, err := d.resolve(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}
	draft, err := gen.GenerateMessage(ctx, outreach.MessageInputFromContext(oc))
	if err != nil {
		return nil, err
	}
	return wf.Submit(ctx, oc, draft)
}

func (d *Dispatcher) reviseDraft(ctx context.Context, body []byte) (any, error) {
	req, err := decode[reviseRequest](d, body)
	if err != nil {
		return nil, err
	}
	wf, err := d.approvals()
	if err != nil {
		return nil, err
	}
	return wf.Revise(ctx, req.ContactID, req.Instruction)
}

func (d *Dispatcher) approveDraft(ctx context.Context, body []byte) (any, error) {
	req, err := decode[contactRequest](d, body)
	if err != nil {
		return nil, err
	}
	wf, err := d.approvals()
	if err != nil {
		return nil, err
	}
	return wf.Approve(ctx, req.ContactID)
}

func (d *Dispatcher) skipContact(ctx context.Context, body []byte) (any, error) {
	req, err := decode[contactRequest](d, body)
	if err != nil {
		return nil, err
	}
	wf, err := d.approvals()
	if err != nil {
		return nil, err
	}
	if err := wf.Skip(ctx, req.ContactID); err != nil {
		return nil, err
	}
	return statusResult{ContactID: req.ContactID, Status: types.StatusSkipped}, nil
}

// analyzeNetworkOverlap matches the export against active_jobs, or against
// the store's in-progress jobs when none are given.
func (d *Dispatcher) analyzeNetworkOverlap(ctx context.Context, body []byte) (any, error) {
	req, err := decode[overlapRequest](d, body)
	if err != nil {
		return nil, err
	}
	conns, err := network.ParseCSVString(req.CSVContent)
	if err != nil {
		return nil, &ValidationError{Field: "csv_content", Message: err.Error()}
	}

	jobs := req.ActiveJobs
	if len(jobs) == 0 && d.deps.Jobs != nil {
		if jobs, err = d.deps.Jobs.GetActiveJobs(ctx); err != nil {
			return nil, err
		}
	}

	fuzzy := true
	if req.FuzzyMatch != nil {
		fuzzy = *req.FuzzyMatch
	}
	return overlapResult{
		Overlap: network.AnalyzeOverlap(conns, jobs, fuzzy),
		Stats:   network.Stats(conns),
	}, nil
}

func (d *Dispatcher) getActiveJobs(ctx context.Context, _ []byte) (any, error) {
	store, err := d.jobs()
	if err != nil {
		return nil, err
	}
	jobs, err := store.GetActiveJobs(ctx)
	if err != nil {
		return nil, err
	}
	return jobsResult{Count: len(jobs), Jobs: jobs}, nil
}

func (d *Dispatcher) getJobDetails(ctx context.Context, body []byte) (any, error) {
	req, err := decode[jobRequest](d, body)
	if err != nil {
		return nil, err
	}
	store, err := d.jobs()
	if err != nil {
		return nil, err
	}
	return store.GetJobDetails(ctx, req.JobID)
}

// updateContactStatus writes a status the lifecycle allows from the stored one.
func (d *Dispatcher) updateContactStatus(ctx context.Context, body []byte) (any, error) {
	req, err := decode[updateStatusRequest](d, body)
	if err != nil {
		return nil, err
	}
	store, err := d.jobs()
	if err != nil {
		return nil, err
	}
	from, err := store.ContactStatus(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}
	if from == "" {
		from = types.StatusReady
	}
	if !from.CanTransitionTo(req.Status) {
		return nil, &approval.TransitionError{ContactID: req.ContactID, From: from, To: req.Status}
	}
	if err := store.UpdateContactStatus(ctx, req.ContactID, req.Status, req.Fields); err != nil {
		return nil, err
	}
	return statusResult{ContactID: req.ContactID, Status: req.Status}, nil
}
