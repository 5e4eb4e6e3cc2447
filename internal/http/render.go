package http

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
	"github.com/rotisserie/eris"
)

// renderComponent materialises a templ component into a byte slice so page
// handlers can return complete HTML bodies through the API layer.
func renderComponent(ctx context.Context, component templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return nil, eris.Wrap(err, "rendering page component")
	}
	return buf.Bytes(), nil
}
