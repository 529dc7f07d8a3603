package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"NewsDigest/internal/domain"
)

// digestTemplate renders the HTML digest body. Groups appear in first-seen
// source order and entries in pipeline order, so the output is byte-identical
// across runs over identical inputs.
const digestTemplate = `<html>
<head>
<style>
.article { margin-bottom: 20px; padding: 10px; border-bottom: 1px solid #ccc; }
.title { font-weight: bold; font-size: 16px; color: #222; }
.source { color: #666; font-style: italic; }
.summary { margin-top: 8px; line-height: 1.4; }
</style>
</head>
<body>
<h2>Today's News Summaries</h2>
<p>Here are the news stories from today:</p>
{{- range .Groups}}
<h3>{{.Source}}</h3>
{{- range .Entries}}
<div class="article">
<div class="title">{{.Title}}</div>
<div class="source">Source: {{.Source}}</div>
<div class="summary">{{.Summary}}</div>
<a href="{{.URL}}" target="_blank">Read more</a>
</div>
{{- end}}
{{- end}}
</body>
</html>
`

var digestTmpl = template.Must(template.New("digest").Parse(digestTemplate))

type digestEntry struct {
	Title   string
	Source  string
	Summary string
	URL     string
}

type digestGroup struct {
	Source  string
	Entries []digestEntry
}

type digestData struct {
	Groups []digestGroup
}

// BuildDigest renders the summaries as an HTML document grouped by source.
func BuildDigest(summaries []domain.Summary) (string, error) {
	var data digestData
	index := map[string]int{}

	for _, summary := range summaries {
		name := summary.Article.Link.Source.Name
		pos, ok := index[name]
		if !ok {
			pos = len(data.Groups)
			index[name] = pos
			data.Groups = append(data.Groups, digestGroup{Source: name})
		}
		data.Groups[pos].Entries = append(data.Groups[pos].Entries, digestEntry{
			Title:   summary.Article.Title,
			Source:  name,
			Summary: summary.Text,
			URL:     summary.Article.Link.URL,
		})
	}

	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}

	return buf.String(), nil
}
