// Package knowledge is the page store behind the second brain and the
// content factory. Notes and content drafts are pages in Notion databases.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// DefaultTimeout bounds each API request.
const DefaultTimeout = 30 * time.Second

// Limits the page store enforces on what is written.
const (
	maxTitle = 100
	maxTags  = 5
	// maxText is the API limit for one rich-text run.
	maxText = 2000
)

// Database names one of the configured Notion databases.
type Database string

const (
	DatabaseInbox     Database = "inbox"
	DatabaseKnowledge Database = "knowledge"
	DatabaseProjects  Database = "projects"
	DatabaseTasks     Database = "tasks"
	DatabasePeople    Database = "people"
	DatabaseContent   Database = "content"
)

// DatabaseFor maps a note category onto its database. Unknown categories go
// to the inbox.
func DatabaseFor(category string) Database {
	switch category {
	case "Knowledge":
		return DatabaseKnowledge
	case "Project":
		return DatabaseProjects
	case "People":
		return DatabasePeople
	case "Task":
		return DatabaseTasks
	default:
		return DatabaseInbox
	}
}

// Config configures a Store.
type Config struct {
	Token string
	// Databases maps each database name to its Notion ID. Missing entries
	// make writes to that database fail with *NotConfiguredError.
	Databases  map[Database]string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Store reads and writes pages.
type Store struct {
	api       *notionapi.Client
	databases map[Database]string
	logger    *slog.Logger
}

// New creates a Store. The integration token is required.
func New(cfg Config) (*Store, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion API key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	databases := make(map[Database]string, len(cfg.Databases))
	for name, id := range cfg.Databases {
		if id = strings.TrimSpace(id); id != "" {
			databases[name] = id
		}
	}
	return &Store{
		api:       notionapi.NewClient(notionapi.Token(cfg.Token), notionapi.WithHTTPClient(httpClient)),
		databases: databases,
		logger:    logger,
	}, nil
}

// Note is a classified thought to file.
type Note struct {
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags,omitempty"`
	Priority string   `json:"priority,omitempty"`
}

// PageRef identifies a created page.
type PageRef struct {
	ID       string   `json:"page_id"`
	URL      string   `json:"notion_url,omitempty"`
	Database Database `json:"database"`
	Title    string   `json:"title"`
}

// Page is a page read back with its text content.
type Page struct {
	ID      string `json:"page_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// FileNote creates a page for note in the database of its category. The
// database schema decides the property names: the title goes to its title
// property and tags to a multi-select whose name mentions "tag", if any.
func (s *Store) FileNote(ctx context.Context, note Note) (*PageRef, error) {
	db := DatabaseFor(note.Category)
	dbID, err := s.databaseID(db)
	if err != nil {
		return nil, err
	}

	schema, err := s.api.Database.Get(ctx, notionapi.DatabaseID(dbID))
	if err != nil {
		return nil, apiError("get database", err)
	}
	titleProp, tagsProp := schemaProperties(schema.Properties)
	if titleProp == "" {
		return nil, fmt.Errorf("no title property in the %s database", db)
	}

	title := clip(orDefault(note.Title, "Untitled"), maxTitle)
	props := notionapi.Properties{
		titleProp: notionapi.TitleProperty{Title: richText(title)},
	}
	if tagsProp != "" && len(note.Tags) > 0 {
		tags := note.Tags
		if len(tags) > maxTags {
			tags = tags[:maxTags]
		}
		options := make([]notionapi.Option, 0, len(tags))
		for _, tag := range tags {
			options = append(options, notionapi.Option{Name: tag})
		}
		props[tagsProp] = notionapi.MultiSelectProperty{MultiSelect: options}
	}

	page, err := s.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     databaseParent(dbID),
		Properties: props,
		Children:   []notionapi.Block{Paragraph(note.Content)},
	})
	if err != nil {
		return nil, apiError("create page", err)
	}

	s.logger.InfoContext(ctx, "note filed",
		slog.String("database", string(db)),
		slog.String("page_id", string(page.ID)))
	return &PageRef{ID: string(page.ID), URL: page.URL, Database: db, Title: title}, nil
}

// GetPage reads a page and the text of its top-level blocks.
func (s *Store) GetPage(ctx context.Context, pageID string) (*Page, error) {
	if strings.TrimSpace(pageID) == "" {
		return nil, fmt.Errorf("page ID is required")
	}
	page, err := s.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, apiError("get page", err)
	}

	var blocks []notionapi.Block
	pagination := &notionapi.Pagination{PageSize: 100}
	for {
		resp, err := s.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), pagination)
		if err != nil {
			// A page whose blocks cannot be read still has a title.
			s.logger.WarnContext(ctx, "failed to read page blocks", slog.String("page_id", pageID), slog.Any("error", err))
			break
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		pagination = &notionapi.Pagination{StartCursor: notionapi.Cursor(resp.NextCursor), PageSize: 100}
	}

	return &Page{
		ID:      pageID,
		Title:   pageTitle(page.Properties),
		Content: blocksText(blocks),
		URL:     page.URL,
	}, nil
}

// PageInput describes a page to create with CreatePage.
type PageInput struct {
	Title string
	// TitleProperty is the database's title column. Empty means "Name".
	TitleProperty string
	// Text sets rich-text properties, each clipped to the API limit.
	Text map[string]string
	// Status sets the "Status" property when non-empty.
	Status string
	// Relations link relation properties to page IDs.
	Relations map[string][]string
	Blocks    []notionapi.Block
}

// CreatePage creates a page in db.
func (s *Store) CreatePage(ctx context.Context, db Database, in PageInput) (*PageRef, error) {
	dbID, err := s.databaseID(db)
	if err != nil {
		return nil, err
	}

	title := clip(orDefault(in.Title, "Untitled"), maxTitle)
	props := notionapi.Properties{
		orDefault(in.TitleProperty, "Name"): notionapi.TitleProperty{Title: richText(title)},
	}
	for name, text := range in.Text {
		props[name] = notionapi.RichTextProperty{RichText: richText(text)}
	}
	if in.Status != "" {
		props["Status"] = notionapi.StatusProperty{Status: notionapi.Status{Name: in.Status}}
	}
	for name, ids := range in.Relations {
		rel := make([]notionapi.Relation, 0, len(ids))
		for _, id := range ids {
			rel = append(rel, notionapi.Relation{ID: notionapi.PageID(id)})
		}
		props[name] = notionapi.RelationProperty{Relation: rel}
	}

	page, err := s.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     databaseParent(dbID),
		Properties: props,
		Children:   in.Blocks,
	})
	if err != nil {
		return nil, apiError("create page", err)
	}
	return &PageRef{ID: string(page.ID), URL: page.URL, Database: db, Title: title}, nil
}

func (s *Store) databaseID(db Database) (string, error) {
	id, ok := s.databases[db]
	if !ok {
		return "", &NotConfiguredError{Database: db}
	}
	return id, nil
}

func databaseParent(id string) notionapi.Parent {
	return notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(id)}
}

// schemaProperties returns the names of the title property and of the tags
// multi-select.
func schemaProperties(props notionapi.PropertyConfigs) (title, tags string) {
	for name, cfg := range props {
		switch cfg.GetType() {
		case notionapi.PropertyConfigTypeTitle:
			title = name
		case notionapi.PropertyConfigTypeMultiSelect:
			if strings.Contains(strings.ToLower(name), "tag") {
				tags = name
			}
		}
	}
	return title, tags
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
