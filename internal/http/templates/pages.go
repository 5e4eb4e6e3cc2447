package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const siteName = "PromptHub"

const stylesheet = `body{font-family:system-ui,sans-serif;max-width:56rem;margin:0 auto;padding:1rem;color:#1f2430}
header h1{margin-bottom:0}
header p{color:#667;margin-top:.25rem}
form.search{display:flex;gap:.5rem;flex-wrap:wrap;margin:1rem 0}
form.search input{flex:1 1 12rem;padding:.4rem .6rem}
.card{border:1px solid #d7dbe2;border-radius:.4rem;padding:.75rem 1rem;margin:.75rem 0}
.card h2{margin:0 0 .25rem;font-size:1.1rem}
.meta{color:#667;font-size:.85rem}
.tag{display:inline-block;background:#eef1f6;border-radius:.3rem;padding:0 .4rem;margin-right:.3rem;font-size:.8rem}
.notice{background:#fff6e5;border:1px solid #ecd9a9;border-radius:.4rem;padding:.5rem .75rem}
.empty{color:#667;font-style:italic}
article.prompt-body{line-height:1.55}`

// BrowsePage renders the search form, catalog statistics and result list.
func BrowsePage(data BrowsePageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		writePageOpen(w, siteName)
		fmt.Fprintf(w, `<header><h1>%s</h1><p>A searchable catalog of reusable prompts.</p></header>`, siteName)

		if data.Stats != nil {
			fmt.Fprintf(w, `<p class="meta">%d prompts &middot; %d categories &middot; %d tags</p>`,
				data.Stats.Total, len(data.Stats.Categories), len(data.Stats.Tags))
		}

		fmt.Fprint(w, `<form class="search" method="get" action="/">`)
		fmt.Fprintf(w, `<input type="search" name="query" placeholder="Search prompts" value="%s">`, templ.EscapeString(data.Query))
		fmt.Fprintf(w, `<input type="text" name="category" placeholder="Category" value="%s">`, templ.EscapeString(data.Category))
		fmt.Fprintf(w, `<input type="text" name="tags" placeholder="Tags (comma-separated)" value="%s">`, templ.EscapeString(data.Tags))
		fmt.Fprint(w, `<button type="submit">Search</button></form>`)

		if data.Notice != "" {
			fmt.Fprintf(w, `<p class="notice">%s</p>`, templ.EscapeString(data.Notice))
		}

		if len(data.Results) == 0 {
			fmt.Fprint(w, `<p class="empty">No prompts found.</p>`)
		}

		for _, result := range data.Results {
			fmt.Fprint(w, `<div class="card">`)
			fmt.Fprintf(w, `<h2><a href="%s">%s</a></h2>`, templ.EscapeString(result.URL), templ.EscapeString(result.Title))
			fmt.Fprint(w, `<p class="meta">`)
			if result.Category != "" {
				fmt.Fprintf(w, `%s &middot; `, templ.EscapeString(result.Category))
			}
			fmt.Fprint(w, templ.EscapeString(result.Created))
			fmt.Fprint(w, `</p>`)
			if result.Excerpt != "" {
				fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(result.Excerpt))
			}
			writeTags(w, result.Tags)
			fmt.Fprint(w, `</div>`)
		}

		return writePageClose(w)
	})
}

// PromptPage renders a single prompt with its rendered Markdown body.
func PromptPage(data PromptPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		writePageOpen(w, data.Title+" • "+siteName)
		fmt.Fprintf(w, `<p><a href="/">&larr; Back to catalog</a></p>`)
		fmt.Fprintf(w, `<header><h1>%s</h1>`, templ.EscapeString(data.Title))
		fmt.Fprint(w, `<p class="meta">`)
		if data.Category != "" {
			fmt.Fprintf(w, `%s &middot; `, templ.EscapeString(data.Category))
		}
		fmt.Fprint(w, templ.EscapeString(data.Created))
		fmt.Fprint(w, `</p>`)
		writeTags(w, data.Tags)
		fmt.Fprint(w, `</header>`)
		// BodyHTML comes from the Markdown renderer, not user input.
		fmt.Fprintf(w, `<article class="prompt-body">%s</article>`, data.BodyHTML)

		return writePageClose(w)
	})
}

// ErrorPage renders a minimal error view.
func ErrorPage(data ErrorPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		title := data.Title
		if title == "" {
			title = data.StatusLabel + " • " + siteName
		}

		writePageOpen(w, title)
		fmt.Fprintf(w, `<header><h1>%s</h1></header>`, templ.EscapeString(data.StatusLabel))
		fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(data.Message))
		fmt.Fprint(w, `<p><a href="/">Back to catalog</a></p>`)

		return writePageClose(w)
	})
}

func writePageOpen(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><style>%s</style></head><body>`,
		templ.EscapeString(title), stylesheet)
}

func writePageClose(w io.Writer) error {
	_, err := fmt.Fprint(w, `</body></html>`)
	return err
}

func writeTags(w io.Writer, tags []string) {
	if len(tags) == 0 {
		return
	}

	fmt.Fprint(w, `<p>`)
	for _, tag := range tags {
		fmt.Fprintf(w, `<span class="tag">%s</span>`, templ.EscapeString(tag))
	}
	fmt.Fprint(w, `</p>`)
}
