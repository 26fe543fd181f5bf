package usecase

import (
	"bytes"
	"html"

	"github.com/m-mizutani/goerr/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	changelogMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	changelogPolicy   = bluemonday.UGCPolicy()
)

// RenderChangelog renders release notes (GitHub-flavored markdown) into sanitized
// HTML headed by the release version
func RenderChangelog(version, notes string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<h4>Changes in v" + html.EscapeString(version) + "</h4>\n")

	var body bytes.Buffer
	if err := changelogMarkdown.Convert([]byte(notes), &body); err != nil {
		return "", goerr.Wrap(err, "failed to render release notes", goerr.V("version", version))
	}
	buf.Write(changelogPolicy.SanitizeBytes(body.Bytes()))

	return buf.String(), nil
}
