package server

import "strings"

// Action is a webhook operation. The set is closed; ParseAction rejects
// anything else.
type Action string

const (
	ActionGetJobsNeedingContacts Action = "get_jobs_needing_contacts"
	ActionDiscoverContacts       Action = "discover_contacts_for_job"
	ActionSaveContacts           Action = "save_contacts"
	ActionClassifyThought        Action = "classify_thought"
	ActionRouteToNotion          Action = "route_to_notion"
	ActionProcessBrainDump       Action = "process_brain_dump"
	ActionGenerateContent        Action = "generate_content_package"
	ActionGetOutreachContext     Action = "get_outreach_context"
	ActionGenerateMessage        Action = "generate_message"
	ActionRefineMessage          Action = "refine_message"
	ActionSubmitDraft            Action = "submit_draft"
	ActionReviseDraft            Action = "revise_draft"
	ActionApproveDraft           Action = "approve_draft"
	ActionSkipContact            Action = "skip_contact"
	ActionAnalyzeNetworkOverlap  Action = "analyze_network_overlap"
	ActionGetActiveJobs          Action = "get_active_jobs_for_network_mining"
	ActionGetJobDetails          Action = "get_job_details"
	ActionUpdateContactStatus    Action = "update_contact_status"
)

// aliases map legacy action names onto registry entries.
var aliases = map[string]Action{
	"generate_outreach":         ActionGenerateMessage,
	"save_contacts_to_airtable": ActionSaveContacts,
}

// ActionGroup is a set of actions serving one workflow.
type ActionGroup struct {
	Workflow string   `json:"workflow"`
	Actions  []Action `json:"actions"`
}

var actionGroups = []ActionGroup{
	{Workflow: "job_monitor", Actions: []Action{ActionGetJobsNeedingContacts, ActionDiscoverContacts, ActionSaveContacts}},
	{Workflow: "brain_dump", Actions: []Action{ActionClassifyThought, ActionRouteToNotion, ActionProcessBrainDump}},
	{Workflow: "content_factory", Actions: []Action{ActionGenerateContent}},
	{Workflow: "outreach", Actions: []Action{ActionGetOutreachContext, ActionGenerateMessage, ActionRefineMessage}},
	{Workflow: "approval", Actions: []Action{ActionSubmitDraft, ActionReviseDraft, ActionApproveDraft, ActionSkipContact}},
	{Workflow: "network_mining", Actions: []Action{ActionAnalyzeNetworkOverlap, ActionGetActiveJobs}},
	{Workflow: "utilities", Actions: []Action{ActionGetJobDetails, ActionUpdateContactStatus}},
}

// ActionGroups returns the registry grouped by workflow.
func ActionGroups() []ActionGroup {
	out := make([]ActionGroup, len(actionGroups))
	for i, g := range actionGroups {
		out[i] = ActionGroup{Workflow: g.Workflow, Actions: append([]Action(nil), g.Actions...)}
	}
	return out
}

// Actions returns every registered action in workflow order.
func Actions() []Action {
	var out []Action
	for _, g := range actionGroups {
		out = append(out, g.Actions...)
	}
	return out
}

// ParseAction resolves name (or a legacy alias) to a registered Action.
func ParseAction(name string) (Action, error) {
	name = strings.TrimSpace(name)
	if a, ok := aliases[name]; ok {
		return a, nil
	}
	for _, a := range Actions() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", &UnsupportedOperationError{Action: name, Supported: Actions()}
}
