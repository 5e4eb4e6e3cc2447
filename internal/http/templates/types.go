package templates

// StatsView summarises the catalog for the browse page sidebar.
type StatsView struct {
	Total      int64
	Categories []string
	Tags       []string
}

// PromptCardView is one search result entry on the browse page.
type PromptCardView struct {
	Title    string
	Category string
	Tags     []string
	Excerpt  string
	Created  string
	URL      string
}

// BrowsePageData bundles template data for the browse/search page.
type BrowsePageData struct {
	Query    string
	Category string
	Tags     string
	Results  []PromptCardView
	Stats    *StatsView
	Notice   string
}

// PromptPageData contains the dynamic values for a prompt detail page.
type PromptPageData struct {
	Title    string
	Category string
	Tags     []string
	Created  string
	BodyHTML string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	Title       string
	StatusLabel string
	Message     string
}
